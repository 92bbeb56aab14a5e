package s3os

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/serverlessresearch/s3os/pkg/codec"
	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/sirupsen/logrus"
)

// DictConfig identifies one dictionary. Every item is stored under
// "<ID>/<item key>" in Bucket, so dictionaries with different IDs can share a
// bucket. Dicts created with the same ID and bucket see the same items.
type DictConfig struct {
	// Generated (UUIDv4) when empty
	ID string
	// DefaultBucket when the name is empty
	Bucket objstore.Bucket
	// With the cache disabled every Get goes to the store and nothing is
	// kept locally.
	DisableCache bool
}

// NewDictConfig returns a config with a fresh random ID in the default
// bucket.
func NewDictConfig() DictConfig {
	return DictConfig{ID: uuid.New().String(), Bucket: objstore.DefaultBucket}
}

// Prefix is the key prefix shared by all items of the dictionary.
func (c DictConfig) Prefix() string {
	return c.ID + "/"
}

// Dict is a dictionary backed by an object store with a local read cache.
//
// Writes and deletes go to the store before the cache is touched, so the
// cache never holds a value the store did not accept. Reads are served from
// the cache once a key has been seen; changes made through other Dicts or
// processes only become visible after GetAllFromS3.
//
// A Dict is not safe for concurrent use.
type Dict struct {
	client    *Client
	config    DictConfig
	log       logrus.FieldLogger
	cache     map[string]codec.Value
	populated bool
}

// NewDict creates a dictionary. No remote calls are made.
func NewDict(client *Client, config DictConfig) *Dict {
	if config.ID == "" {
		config.ID = uuid.New().String()
	}
	if config.Bucket.Name == "" {
		config.Bucket = objstore.DefaultBucket
	}
	return &Dict{
		client: client,
		config: config,
		log:    client.Logger().WithFields(logrus.Fields{"dict": config.ID, "bucket": config.Bucket.Name}),
		cache:  make(map[string]codec.Value),
	}
}

func (d *Dict) Config() DictConfig { return d.config }

// Populated reports whether the last GetAllFromS3 completed. It stays true
// until Clear, even if other processes change the store afterwards.
func (d *Dict) Populated() bool { return d.populated }

// RemoteKey returns the store key for an item key.
func (d *Dict) RemoteKey(key string) string {
	return d.config.Prefix() + key
}

// ItemKey strips the dictionary prefix from a store key. Keys without the
// prefix are returned unchanged.
func (d *Dict) ItemKey(remoteKey string) string {
	return strings.TrimPrefix(remoteKey, d.config.Prefix())
}

func (d *Dict) location(key string) objstore.ObjectLocation {
	return objstore.Location(d.RemoteKey(key), d.config.Bucket)
}

// Get returns the value for key, from the cache when possible. A key absent
// from the store yields a *MissingKeyError.
func (d *Dict) Get(ctx context.Context, key string) (codec.Value, error) {
	if !d.config.DisableCache {
		if v, ok := d.cache[key]; ok {
			return clone(v), nil
		}
	}

	v, err := d.client.Retrieve(ctx, d.location(key))
	if err != nil {
		if objstore.IsNotFound(err) {
			return nil, &MissingKeyError{Key: key, Err: err}
		}
		return nil, err
	}

	if !d.config.DisableCache {
		d.cache[key] = v
		v = clone(v)
	}
	return v, nil
}

// Set writes value for key to the store and, once the write succeeded, to
// the cache.
func (d *Dict) Set(ctx context.Context, key string, value codec.Value) error {
	loc := d.location(key)
	n, err := codec.Normalize(value)
	if err != nil {
		return &StoreError{Location: loc, Err: err}
	}
	if err := d.client.Store(ctx, loc, n); err != nil {
		return err
	}
	if !d.config.DisableCache {
		d.cache[key] = n
	}
	return nil
}

// Delete removes key from the store and the cache. Deleting an absent key
// succeeds.
func (d *Dict) Delete(ctx context.Context, key string) error {
	if err := d.client.Delete(ctx, d.location(key)); err != nil {
		return err
	}
	delete(d.cache, key)
	return nil
}

// Update sets every item, in key order, and stops at the first failure.
func (d *Dict) Update(ctx context.Context, items map[string]codec.Value) error {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := d.Set(ctx, k, items[k]); err != nil {
			return err
		}
	}
	return nil
}

// GetAllFromS3 makes the cache an exact mirror of the store: items missing
// locally are fetched, cached items no longer in the store are dropped. It
// returns a copy of the reconciled contents.
//
// On error the cache is left as it was.
func (d *Dict) GetAllFromS3(ctx context.Context) (map[string]codec.Value, error) {
	locs, err := d.client.List(ctx, d.config.Bucket, d.config.Prefix())
	if err != nil {
		return nil, err
	}

	remote := make(map[string]bool, len(locs))
	fetched := make(map[string]codec.Value)
	for _, loc := range locs {
		key := d.ItemKey(loc.Key)
		if key == "" {
			// Directory marker objects named exactly like the prefix
			continue
		}
		remote[key] = true
		if _, ok := d.cache[key]; ok && !d.config.DisableCache {
			continue
		}

		v, err := d.client.Retrieve(ctx, loc)
		if objstore.IsNotFound(err) {
			// Deleted between listing and fetching.
			d.log.WithField("key", key).Debug("item vanished during reconciliation")
			delete(remote, key)
			continue
		}
		if err != nil {
			return nil, err
		}
		fetched[key] = v
	}

	if d.config.DisableCache {
		return fetched, nil
	}

	stale := 0
	for k := range d.cache {
		if !remote[k] {
			delete(d.cache, k)
			stale++
		}
	}
	for k, v := range fetched {
		d.cache[k] = v
	}
	d.populated = true

	d.log.WithFields(logrus.Fields{
		"items":   len(d.cache),
		"fetched": len(fetched),
		"dropped": stale,
	}).Debug("reconciled cache")
	return d.Cached(), nil
}

// Cached returns a copy of the cache without contacting the store. It only
// reflects the whole dictionary right after GetAllFromS3.
func (d *Dict) Cached() map[string]codec.Value {
	out := make(map[string]codec.Value, len(d.cache))
	for k, v := range d.cache {
		out[k] = clone(v)
	}
	return out
}

// Clear deletes every item of the dictionary from the store and empties the
// cache. Items written by others are deleted too.
func (d *Dict) Clear(ctx context.Context) error {
	locs, err := d.client.List(ctx, d.config.Bucket, d.config.Prefix())
	if err != nil {
		return err
	}
	d.populated = false

	for _, loc := range locs {
		if err := d.client.Delete(ctx, loc); err != nil {
			return err
		}
		delete(d.cache, d.ItemKey(loc.Key))
	}
	d.cache = make(map[string]codec.Value)
	d.log.WithField("deleted", len(locs)).Debug("cleared dict")
	return nil
}

// clone deep-copies the containers of a normalized value so callers cannot
// mutate cached state.
func clone(v codec.Value) codec.Value {
	switch x := v.(type) {
	case []codec.Value:
		out := make([]codec.Value, len(x))
		for i, e := range x {
			out[i] = clone(e)
		}
		return out
	case map[string]codec.Value:
		out := make(map[string]codec.Value, len(x))
		for k, e := range x {
			out[k] = clone(e)
		}
		return out
	}
	return v
}
