package mocks

import (
	"context"

	"github.com/bugrarslan/mirza-admin/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) FindSlot(ctx context.Context, kind model.AssetKind, id int64) (*model.AssetSlot, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AssetSlot), args.Error(1)
}

func (m *MockSlotRepository) SetSlotURL(ctx context.Context, kind model.AssetKind, id int64, url *string) error {
	args := m.Called(ctx, kind, id, url)
	return args.Error(0)
}

func (m *MockSlotRepository) DeleteRecord(ctx context.Context, kind model.AssetKind, id int64) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockSlotRepository) CreateDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
