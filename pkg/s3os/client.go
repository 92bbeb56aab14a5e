package s3os

import (
	"context"
	"io/ioutil"
	"sync"

	"github.com/serverlessresearch/s3os/pkg/codec"
	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// Defaults to CBOR
	Codec codec.Codec
	// Defaults to a logger that discards everything
	Logger logrus.FieldLogger
	// Create buckets on first write when the backend supports it
	EnsureBuckets bool
}

// Client stores single values at explicit locations. It keeps no state about
// the objects themselves and is safe for concurrent use if the backend is.
type Client struct {
	store objstore.Store
	codec codec.Codec
	log   logrus.FieldLogger

	ensureBuckets bool
	mu            sync.Mutex
	ensured       map[string]bool
}

func NewClient(store objstore.Store, opts Options) *Client {
	c := &Client{
		store:         store,
		codec:         opts.Codec,
		log:           opts.Logger,
		ensureBuckets: opts.EnsureBuckets,
		ensured:       make(map[string]bool),
	}
	if c.codec == nil {
		c.codec = codec.MustCBOR()
	}
	if c.log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		c.log = l
	}
	return c
}

func (c *Client) Logger() logrus.FieldLogger { return c.log }
func (c *Client) Codec() codec.Codec         { return c.codec }

func (c *Client) ensureBucket(ctx context.Context, bucket objstore.Bucket) error {
	if !c.ensureBuckets {
		return nil
	}
	ensurer, ok := c.store.(objstore.BucketEnsurer)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ensured[bucket.Name] {
		return nil
	}
	if err := ensurer.EnsureBucket(ctx, bucket); err != nil {
		return err
	}
	c.ensured[bucket.Name] = true
	return nil
}

// Store serializes v and writes it to loc, overwriting any existing object.
// Every failure is returned as a *StoreError.
func (c *Client) Store(ctx context.Context, loc objstore.ObjectLocation, v codec.Value) error {
	data, err := c.codec.Encode(v)
	if err != nil {
		return &StoreError{Location: loc, Err: err}
	}
	if err := c.ensureBucket(ctx, loc.Bucket); err != nil {
		return &StoreError{Location: loc, Err: err}
	}
	if err := c.store.Put(ctx, loc.Bucket, loc.Key, data); err != nil {
		return &StoreError{Location: loc, Err: err}
	}
	c.log.WithField("location", loc.String()).Debug("stored value")
	return nil
}

// Retrieve reads and decodes the object at loc. A missing object yields an
// error matching objstore.ErrNotFound; undecodable bytes yield a
// *DeserializationError. Backend failures are returned unchanged.
func (c *Client) Retrieve(ctx context.Context, loc objstore.ObjectLocation) (codec.Value, error) {
	data, err := c.store.Get(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, err
	}
	v, err := c.codec.Decode(data)
	if err != nil {
		return nil, &DeserializationError{Location: loc, Err: err}
	}
	c.log.WithField("location", loc.String()).Debug("retrieved value")
	return v, nil
}

// Delete removes the object at loc. Deleting a missing object succeeds.
func (c *Client) Delete(ctx context.Context, loc objstore.ObjectLocation) error {
	if err := c.store.Delete(ctx, loc.Bucket, loc.Key); err != nil {
		return err
	}
	c.log.WithField("location", loc.String()).Debug("deleted value")
	return nil
}

// List returns the locations of every object in bucket whose key starts
// with prefix.
func (c *Client) List(ctx context.Context, bucket objstore.Bucket, prefix string) ([]objstore.ObjectLocation, error) {
	keys, err := c.store.ListKeys(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	locs := make([]objstore.ObjectLocation, len(keys))
	for i, k := range keys {
		locs[i] = objstore.Location(k, bucket)
	}
	return locs, nil
}

// StoreSimple stores v under key in the default bucket.
func (c *Client) StoreSimple(ctx context.Context, key string, v codec.Value) error {
	return c.Store(ctx, objstore.NewLocation(key), v)
}

// RetrieveSimple reads key from the default bucket.
func (c *Client) RetrieveSimple(ctx context.Context, key string) (codec.Value, error) {
	return c.Retrieve(ctx, objstore.NewLocation(key))
}

// DeleteSimple deletes key from the default bucket.
func (c *Client) DeleteSimple(ctx context.Context, key string) error {
	return c.Delete(ctx, objstore.NewLocation(key))
}
