package s3os

import (
	"context"
	"errors"
	"testing"

	"github.com/serverlessresearch/s3os/pkg/codec"
	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(store objstore.Store) *Client {
	logger, _ := test.NewNullLogger()
	return NewClient(store, Options{Logger: logger})
}

func TestStoreAndRetrieve(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(objstore.NewMemStore())

	cases := []struct {
		key string
		obj codec.Value
	}{
		{"string", "asdf"},
		{"list", []interface{}{1, 2, 3}},
		{"dict", map[string]interface{}{"1": 2, "3": 4}},
		{"int", 5},
	}
	for _, tc := range cases {
		loc := objstore.NewLocation(tc.key)
		require.NoError(t, c.Store(ctx, loc, tc.obj))

		got, err := c.Retrieve(ctx, loc)
		require.NoError(t, err)
		want, _ := codec.Normalize(tc.obj)
		assert.Equal(t, want, got, tc.key)
	}
}

func TestStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(objstore.NewMemStore())
	loc := objstore.Location("k", objstore.Bucket{Name: "b"})

	require.NoError(t, c.Store(ctx, loc, "first"))
	require.NoError(t, c.Store(ctx, loc, "second"))
	got, err := c.Retrieve(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestRetrieveMissing(t *testing.T) {
	c := newTestClient(objstore.NewMemStore())

	_, err := c.Retrieve(context.Background(), objstore.NewLocation("DOES_NOT_EXIST"))
	require.Error(t, err)
	assert.True(t, objstore.IsNotFound(err))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(objstore.NewMemStore())
	loc := objstore.NewLocation("DOES_NOT_EXIST")

	assert.NoError(t, c.Delete(ctx, loc))
	assert.NoError(t, c.Delete(ctx, loc))

	require.NoError(t, c.Store(ctx, loc, 1))
	assert.NoError(t, c.Delete(ctx, loc))
	assert.NoError(t, c.Delete(ctx, loc))
	_, err := c.Retrieve(ctx, loc)
	assert.True(t, objstore.IsNotFound(err))
}

func TestRetrieveCorrupt(t *testing.T) {
	ctx := context.Background()
	mem := objstore.NewMemStore()
	c := newTestClient(mem)
	loc := objstore.NewLocation("corrupt")
	require.NoError(t, mem.Put(ctx, loc.Bucket, loc.Key, []byte{0xc1}))

	_, err := c.Retrieve(ctx, loc)
	require.Error(t, err)
	var de *DeserializationError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, loc, de.Location)
}

func TestStoreUnsupportedValue(t *testing.T) {
	mem := objstore.NewMemStore()
	c := newTestClient(mem)

	err := c.StoreSimple(context.Background(), "chan", make(chan int))
	require.Error(t, err)
	var se *StoreError
	require.True(t, errors.As(err, &se))
	var ser *codec.SerializationError
	assert.True(t, errors.As(err, &ser))
	assert.Equal(t, 0, mem.Calls("put"))
}

func TestStoreTransportFailure(t *testing.T) {
	m := &mockStore{}
	boom := &objstore.TransportError{Op: "put", Bucket: "s3os", Key: "k", Err: errors.New("connection reset")}
	m.On("Put", objstore.DefaultBucket, "k", mock.Anything).Return(boom)
	c := newTestClient(m)

	err := c.StoreSimple(context.Background(), "k", "v")
	require.Error(t, err)
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.True(t, objstore.IsTransport(err))
	m.AssertExpectations(t)
}

func TestSimpleAPIUsesDefaultBucket(t *testing.T) {
	ctx := context.Background()
	mem := objstore.NewMemStore()
	c := newTestClient(mem)

	require.NoError(t, c.StoreSimple(ctx, "k", "v"))
	keys, err := mem.ListKeys(ctx, objstore.DefaultBucket, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	v, err := c.RetrieveSimple(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, c.DeleteSimple(ctx, "k"))
	_, err = c.RetrieveSimple(ctx, "k")
	assert.True(t, objstore.IsNotFound(err))
}

func TestEnsureBuckets(t *testing.T) {
	ctx := context.Background()
	s := &ensuringStore{MemStore: objstore.NewMemStore()}
	c := NewClient(s, Options{EnsureBuckets: true})

	require.NoError(t, c.Store(ctx, objstore.Location("a", objstore.Bucket{Name: "one"}), 1))
	require.NoError(t, c.Store(ctx, objstore.Location("b", objstore.Bucket{Name: "one"}), 2))
	require.NoError(t, c.Store(ctx, objstore.Location("c", objstore.Bucket{Name: "two"}), 3))
	assert.Equal(t, []string{"one", "two"}, s.ensured)

	off := &ensuringStore{MemStore: objstore.NewMemStore()}
	require.NoError(t, NewClient(off, Options{}).StoreSimple(ctx, "k", 1))
	assert.Empty(t, off.ensured)
}

func TestClientLogsOperations(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c := NewClient(objstore.NewMemStore(), Options{Logger: logger})

	require.NoError(t, c.StoreSimple(context.Background(), "k", "v"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "stored value", hook.LastEntry().Message)
	assert.Equal(t, "s3os/k", hook.LastEntry().Data["location"])
}
