package redisstore

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, "plain/key", escapeGlob("plain/key"))
	assert.Equal(t, `a\*b\?c\[d\]e\\f`, escapeGlob(`a*b?c[d]e\f`))
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "s3os/dict/apples", redisKey(objstore.DefaultBucket, "dict/apples"))
}

func TestDedupSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupSorted([]string{"a", "a", "b", "c", "c"}))
	assert.Empty(t, dedupSorted([]string{}))
}

func TestNilClient(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := New(Config{}, logger)
	assert.Equal(t, ErrNilClient, err)
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s, err := New(Config{Client: client, CloseClient: true}, logger)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(context.Background(), objstore.DefaultBucket, "k")
	require.Error(t, err)
	assert.True(t, objstore.IsTransport(err))
	assert.False(t, objstore.IsNotFound(err))
}
