package s3os

import (
	"context"

	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/stretchr/testify/mock"
)

// mockStore lets tests script backend failures.
type mockStore struct {
	mock.Mock
}

var _ objstore.Store = (*mockStore)(nil)

func (m *mockStore) Put(ctx context.Context, bucket objstore.Bucket, key string, data []byte) error {
	args := m.Called(bucket, key, data)
	return args.Error(0)
}

func (m *mockStore) Get(ctx context.Context, bucket objstore.Bucket, key string) ([]byte, error) {
	args := m.Called(bucket, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, bucket objstore.Bucket, key string) error {
	args := m.Called(bucket, key)
	return args.Error(0)
}

func (m *mockStore) ListKeys(ctx context.Context, bucket objstore.Bucket, prefix string) ([]string, error) {
	args := m.Called(bucket, prefix)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

// ensuringStore is a MemStore that also records EnsureBucket calls.
type ensuringStore struct {
	*objstore.MemStore
	ensured []string
}

func (e *ensuringStore) EnsureBucket(ctx context.Context, bucket objstore.Bucket) error {
	e.ensured = append(e.ensured, bucket.Name)
	return nil
}
