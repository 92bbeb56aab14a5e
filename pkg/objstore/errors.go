package objstore

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched (via errors.Is) by every error a backend returns for
// a missing object.
var ErrNotFound = errors.New("object not found")

// IsNotFound reports whether err signals a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NotFound returns an ErrNotFound error naming the missing location.
func NotFound(bucket Bucket, key string) error {
	return fmt.Errorf("%s/%s: %w", bucket.Name, key, ErrNotFound)
}

// TransportError reports a failure talking to the backend: network, auth,
// permission or anything else that is not a plain "not found".
type TransportError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors walk through a TransportError.
func (e *TransportError) Cause() error { return e.Err }

// IsTransport reports whether err is (or wraps) a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
