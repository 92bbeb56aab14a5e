// Package localstore keeps objects as plain files, one directory per bucket.
// Keys containing "/" map onto nested directories, so a key cannot coexist
// with another key that extends it ("a" and "a/b"): one is a file, the other
// needs a directory at the same path.
//
// Keys must already be in canonical slash form. Empty, "." and ".."
// segments, leading or trailing slashes and doubled slashes are refused
// rather than cleaned, since cleaning would make distinct keys share a file.
package localstore

import (
	"context"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/sirupsen/logrus"
)

type LocalStore struct {
	storageDir string
	log        logrus.FieldLogger
}

var (
	_ objstore.Store         = (*LocalStore)(nil)
	_ objstore.BucketEnsurer = (*LocalStore)(nil)
)

func New(storageDir string, log logrus.FieldLogger) *LocalStore {
	return &LocalStore{storageDir: storageDir, log: log}
}

func (o *LocalStore) errorHandler(op string, bucket objstore.Bucket, key string, err error) error {
	if os.IsNotExist(err) {
		return objstore.NotFound(bucket, key)
	}
	if os.IsPermission(err) {
		err = errors.Wrap(err, "permission denied")
	}
	return &objstore.TransportError{Op: op, Bucket: bucket.Name, Key: key, Err: err}
}

// isMissing also covers ENOTDIR: looking up "a/b" while "a" is a file.
func isMissing(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR)
}

func validKey(key string) bool {
	if key == "" || path.Clean(key) != key {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		switch seg {
		case "", ".", "..":
			return false
		}
	}
	return true
}

// objectPath resolves key under the bucket directory and refuses keys that
// are not canonical or would escape it.
func (o *LocalStore) objectPath(bucket objstore.Bucket, key string) (string, error) {
	if !validKey(key) {
		return "", errors.Errorf("invalid object key %q", key)
	}
	bucketDir := filepath.Join(o.storageDir, bucket.Name)
	p := filepath.Join(bucketDir, filepath.FromSlash(key))
	if p == bucketDir || !strings.HasPrefix(p, bucketDir+string(filepath.Separator)) {
		return "", errors.Errorf("invalid object key %q", key)
	}
	return p, nil
}

func (o *LocalStore) EnsureBucket(ctx context.Context, bucket objstore.Bucket) error {
	err := os.MkdirAll(filepath.Join(o.storageDir, bucket.Name), 0755)
	if err != nil {
		return o.errorHandler("create-bucket", bucket, "", err)
	}
	return nil
}

func (o *LocalStore) Put(ctx context.Context, bucket objstore.Bucket, key string, data []byte) error {
	p, err := o.objectPath(bucket, key)
	if err != nil {
		return &objstore.TransportError{Op: "put", Bucket: bucket.Name, Key: key, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return o.errorHandler("put", bucket, key, err)
	}
	if err := ioutil.WriteFile(p, data, 0644); err != nil {
		return o.errorHandler("put", bucket, key, err)
	}
	o.log.WithFields(logrus.Fields{"bucket": bucket.Name, "key": key, "bytes": len(data)}).Debug("wrote object")
	return nil
}

func (o *LocalStore) Get(ctx context.Context, bucket objstore.Bucket, key string) ([]byte, error) {
	p, err := o.objectPath(bucket, key)
	if err != nil {
		return nil, &objstore.TransportError{Op: "get", Bucket: bucket.Name, Key: key, Err: err}
	}
	data, err := ioutil.ReadFile(p)
	if isMissing(err) {
		return nil, objstore.NotFound(bucket, key)
	}
	if err != nil {
		return nil, o.errorHandler("get", bucket, key, err)
	}
	return data, nil
}

func (o *LocalStore) Delete(ctx context.Context, bucket objstore.Bucket, key string) error {
	p, err := o.objectPath(bucket, key)
	if err != nil {
		return &objstore.TransportError{Op: "delete", Bucket: bucket.Name, Key: key, Err: err}
	}
	if err := os.Remove(p); err != nil && !isMissing(err) {
		return o.errorHandler("delete", bucket, key, err)
	}
	return nil
}

func (o *LocalStore) ListKeys(ctx context.Context, bucket objstore.Bucket, prefix string) ([]string, error) {
	bucketDir := filepath.Join(o.storageDir, bucket.Name)
	keys := []string{}
	err := filepath.Walk(bucketDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(bucketDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if os.IsNotExist(err) {
		// A bucket that was never written to is simply empty.
		return keys, nil
	}
	if err != nil {
		return nil, o.errorHandler("list", bucket, "", err)
	}
	sort.Strings(keys)
	return keys, nil
}
