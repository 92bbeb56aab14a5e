// Package redisstore keeps objects in Redis under "<bucket>/<key>". Buckets
// are purely key prefixes; there is nothing to create.
package redisstore

import (
	"context"
	"errors"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/sirupsen/logrus"
)

var ErrNilClient = errors.New("redisstore: nil client")

// Keys requested per SCAN round trip.
const scanCount = 500

type RedisStore struct {
	rdb         goredis.UniversalClient
	closeClient bool
	log         logrus.FieldLogger
}

var _ objstore.Store = (*RedisStore)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config, log logrus.FieldLogger) (*RedisStore, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &RedisStore{rdb: cfg.Client, closeClient: cfg.CloseClient, log: log}, nil
}

func redisKey(bucket objstore.Bucket, key string) string {
	return bucket.Name + "/" + key
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (r *RedisStore) Put(ctx context.Context, bucket objstore.Bucket, key string, data []byte) error {
	if err := r.rdb.Set(ctx, redisKey(bucket, key), data, 0).Err(); err != nil {
		return &objstore.TransportError{Op: "put", Bucket: bucket.Name, Key: key, Err: err}
	}
	r.log.WithFields(logrus.Fields{"bucket": bucket.Name, "key": key, "bytes": len(data)}).Debug("stored object")
	return nil
}

func (r *RedisStore) Get(ctx context.Context, bucket objstore.Bucket, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, redisKey(bucket, key)).Bytes()
	if err == goredis.Nil {
		return nil, objstore.NotFound(bucket, key)
	}
	if err != nil {
		return nil, &objstore.TransportError{Op: "get", Bucket: bucket.Name, Key: key, Err: err}
	}
	return b, nil
}

func (r *RedisStore) Delete(ctx context.Context, bucket objstore.Bucket, key string) error {
	if err := r.rdb.Del(ctx, redisKey(bucket, key)).Err(); err != nil {
		return &objstore.TransportError{Op: "delete", Bucket: bucket.Name, Key: key, Err: err}
	}
	return nil
}

func (r *RedisStore) ListKeys(ctx context.Context, bucket objstore.Bucket, prefix string) ([]string, error) {
	base := redisKey(bucket, "")
	match := escapeGlob(base+prefix) + "*"

	keys := []string{}
	iter := r.rdb.Scan(ctx, 0, match, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), base))
	}
	if err := iter.Err(); err != nil {
		return nil, &objstore.TransportError{Op: "list", Bucket: bucket.Name, Key: prefix, Err: err}
	}
	// SCAN may return a key more than once.
	sort.Strings(keys)
	return dedupSorted(keys), nil
}

func dedupSorted(keys []string) []string {
	out := keys[:0]
	for i, k := range keys {
		if i == 0 || k != keys[i-1] {
			out = append(out, k)
		}
	}
	return out
}

// Close releases the underlying client only when this store owns it.
func (r *RedisStore) Close() error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
