package objstore

import "context"

// Store is implemented by every object store backend.
type Store interface {
	// Put writes data under key, replacing anything already there.
	Put(ctx context.Context, bucket Bucket, key string, data []byte) error

	// Get returns the bytes stored under key. A missing object yields an
	// error matching ErrNotFound.
	Get(ctx context.Context, bucket Bucket, key string) ([]byte, error)

	// Delete removes key. Deleting a missing object succeeds.
	Delete(ctx context.Context, bucket Bucket, key string) error

	// ListKeys returns every key in bucket that starts with prefix. An empty
	// prefix lists the whole bucket. No match yields an empty slice.
	ListKeys(ctx context.Context, bucket Bucket, prefix string) ([]string, error)
}

// BucketEnsurer is implemented by backends that can create a bucket on
// demand. EnsureBucket is a no-op when the bucket already exists.
type BucketEnsurer interface {
	EnsureBucket(ctx context.Context, bucket Bucket) error
}
