package objstore

import "fmt"

// DefaultBucketName is the bucket used by the simple, single-namespace API.
const DefaultBucketName = "s3os"

// DefaultBucket is the bucket used when a location does not name one.
var DefaultBucket = Bucket{Name: DefaultBucketName}

// Bucket names a namespace within the remote store. Region is only a hint for
// backends that create buckets.
type Bucket struct {
	Name   string
	Region string
}

func (b Bucket) String() string {
	if b.Region == "" {
		return b.Name
	}
	return b.Name + "@" + b.Region
}

// ObjectLocation addresses exactly one stored object. It is a comparable value
// and two locations are equal iff bucket and key are equal.
type ObjectLocation struct {
	Key    string
	Bucket Bucket
}

// NewLocation returns a location for key in the default bucket.
func NewLocation(key string) ObjectLocation {
	return ObjectLocation{Key: key, Bucket: DefaultBucket}
}

// Location returns a location for key in bucket.
func Location(key string, bucket Bucket) ObjectLocation {
	return ObjectLocation{Key: key, Bucket: bucket}
}

func (l ObjectLocation) String() string {
	return fmt.Sprintf("%s/%s", l.Bucket.Name, l.Key)
}
