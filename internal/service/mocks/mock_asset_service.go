package mocks

import (
	"context"

	"github.com/bugrarslan/mirza-admin/internal/asset"
	"github.com/bugrarslan/mirza-admin/internal/model"
	"github.com/bugrarslan/mirza-admin/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAssetService struct {
	mock.Mock
}

var _ service.AssetService = (*MockAssetService)(nil)

func (m *MockAssetService) Attach(ctx context.Context, kind model.AssetKind, id int64, f asset.File) (*model.AssetSlot, error) {
	args := m.Called(ctx, kind, id, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AssetSlot), args.Error(1)
}

func (m *MockAssetService) Detach(ctx context.Context, kind model.AssetKind, id int64) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockAssetService) DeleteRecord(ctx context.Context, kind model.AssetKind, id int64) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockAssetService) CreateDocument(ctx context.Context, in service.CreateDocumentInput, f asset.File) (*model.Document, error) {
	args := m.Called(ctx, in, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
