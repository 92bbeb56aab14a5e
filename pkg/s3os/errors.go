package s3os

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/serverlessresearch/s3os/pkg/objstore"
)

// StoreError wraps any failure while writing an object: the value could not
// be serialized, or the backend rejected the write.
type StoreError struct {
	Location objstore.ObjectLocation
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Location, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
func (e *StoreError) Cause() error  { return e.Err }

// DeserializationError means the stored bytes could not be decoded by the
// configured codec.
type DeserializationError struct {
	Location objstore.ObjectLocation
	Err      error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Location, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }
func (e *DeserializationError) Cause() error  { return e.Err }

// MissingKeyError is returned by Dict.Get when the item exists neither in
// the cache nor in the backing store. It matches objstore.ErrNotFound.
type MissingKeyError struct {
	Key string
	Err error
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("key %q not found", e.Key)
}

func (e *MissingKeyError) Unwrap() error { return e.Err }
func (e *MissingKeyError) Cause() error  { return e.Err }

// IsMissingKey reports whether err came from a Dict lookup of an absent key.
func IsMissingKey(err error) bool {
	var mk *MissingKeyError
	return errors.As(err, &mk)
}
