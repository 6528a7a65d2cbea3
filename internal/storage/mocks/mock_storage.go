package mocks

import (
	"context"
	"io"

	"github.com/bugrarslan/mirza-admin/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, bucket, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, r, opt)
	if f, ok := args.Get(0).(func(context.Context, string, string, io.Reader, storage.PutObjectOptions) storage.ObjectInfo); ok {
		return f(ctx, bucket, key, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Remove(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

// PublicURL is pure in every driver, so the mock delegates to the shared builder
// instead of requiring an expectation per call.
func (m *MockStorage) PublicURL(bucket, key string) string {
	return storage.PublicURL(Origin, bucket, key)
}

// Origin is the public origin used by MockStorage.PublicURL.
const Origin = "https://project.supabase.co"
