/*

Package objstore defines the minimal contract s3os needs from an object store such as AWS S3, a local directory or
a Redis instance. The interface intentionally provides only four operations (put, get, delete and prefix listing) so
that new backends stay easy to build.

Limitations and Design Considerations

Buckets - a bucket is only a namespace. Backends may create buckets on demand (see BucketEnsurer) but there is no
way to delete or enumerate them through this API.

Errors - backends report a missing object by returning an error that matches ErrNotFound under errors.Is. Failures
talking to the backend (network, auth, permissions) are reported as *TransportError so callers can tell "absent"
apart from "could not ask". Deleting a missing object is not an error.

Consistency guarantees - none beyond what the backend provides. Concurrent writers to one key race and the last
write wins.

Retries and timeouts - left to each backend. The S3 backend inherits the retry policy of the AWS SDK.
*/
package objstore
