// AWS S3 backend for objstore. Works against any S3-compatible endpoint
// (minio, localstack) when Endpoint and ForcePathStyle are set.

package s3store

import (
	"bytes"
	"context"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/sirupsen/logrus"
)

// Code returned by HeadObject/HeadBucket for missing resources. The SDK has
// no constant for it.
const errCodeNotFound = "NotFound"

type Config struct {
	Region string
	// Optional custom endpoint, e.g. http://localhost:9000 for minio
	Endpoint       string
	ForcePathStyle bool
	// Negative means "use the SDK default"
	MaxRetries int
	// Static credentials. When empty the default AWS credential chain
	// (environment, shared config, instance role) is used.
	AccessKeyID     string
	SecretAccessKey string
}

type S3Store struct {
	client s3iface.S3API
	log    logrus.FieldLogger
}

var (
	_ objstore.Store         = (*S3Store)(nil)
	_ objstore.BucketEnsurer = (*S3Store)(nil)
)

// New wraps an existing S3 client.
func New(client s3iface.S3API, log logrus.FieldLogger) *S3Store {
	return &S3Store{client: client, log: log}
}

// NewFromConfig builds an S3 client from cfg.
func NewFromConfig(cfg Config, log logrus.FieldLogger) (*S3Store, error) {
	awsCfg := &aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.ForcePathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.MaxRetries >= 0 {
		awsCfg.MaxRetries = aws.Int(cfg.MaxRetries)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create AWS session")
	}
	return New(s3.New(sess), log), nil
}

func awsCode(err error) string {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code()
	}
	return ""
}

func isMissing(err error) bool {
	switch awsCode(err) {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, errCodeNotFound:
		return true
	}
	return false
}

// EnsureBucket creates bucket unless it already exists. Every call costs at
// least one HeadBucket; callers remember which buckets they have ensured.
func (s *S3Store) EnsureBucket(ctx context.Context, bucket objstore.Bucket) error {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket.Name)})
	if err == nil {
		return nil
	}
	if !isMissing(err) {
		return &objstore.TransportError{Op: "head-bucket", Bucket: bucket.Name, Err: err}
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket.Name)}
	// us-east-1 is the default location and must not be sent as a constraint
	if bucket.Region != "" && bucket.Region != "us-east-1" {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(bucket.Region),
		}
	}
	_, err = s.client.CreateBucketWithContext(ctx, input)
	if err != nil {
		switch awsCode(err) {
		case s3.ErrCodeBucketAlreadyOwnedByYou, s3.ErrCodeBucketAlreadyExists:
		default:
			s.log.WithField("bucket", bucket.String()).Errorf("Failed to create bucket: %v", err)
			return &objstore.TransportError{Op: "create-bucket", Bucket: bucket.Name, Err: err}
		}
	}
	s.log.WithField("bucket", bucket.String()).Info("created bucket")
	return nil
}

func (s *S3Store) Put(ctx context.Context, bucket objstore.Bucket, key string, data []byte) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket.Name),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return &objstore.TransportError{Op: "put", Bucket: bucket.Name, Key: key, Err: err}
	}
	s.log.WithFields(logrus.Fields{"bucket": bucket.Name, "key": key, "bytes": len(data)}).Debug("uploaded object")
	return nil
}

func (s *S3Store) Get(ctx context.Context, bucket objstore.Bucket, key string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket.Name),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissing(err) {
			s.log.WithFields(logrus.Fields{"bucket": bucket.Name, "key": key}).Debug("object does not exist")
			return nil, objstore.NotFound(bucket, key)
		}
		return nil, &objstore.TransportError{Op: "get", Bucket: bucket.Name, Key: key, Err: err}
	}
	defer out.Body.Close()

	data, err := ioutil.ReadAll(out.Body)
	if err != nil {
		return nil, &objstore.TransportError{Op: "get", Bucket: bucket.Name, Key: key, Err: err}
	}
	s.log.WithFields(logrus.Fields{"bucket": bucket.Name, "key": key, "bytes": len(data)}).Debug("downloaded object")
	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, bucket objstore.Bucket, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket.Name),
		Key:    aws.String(key),
	})
	if err != nil && !isMissing(err) {
		return &objstore.TransportError{Op: "delete", Bucket: bucket.Name, Key: key, Err: err}
	}
	s.log.WithFields(logrus.Fields{"bucket": bucket.Name, "key": key}).Debug("deleted object")
	return nil
}

// ListKeys follows continuation tokens until the last page; S3 returns at
// most 1000 keys per page.
func (s *S3Store) ListKeys(ctx context.Context, bucket objstore.Bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket.Name)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	keys := []string{}
	err := s.client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		if awsCode(err) == s3.ErrCodeNoSuchBucket {
			s.log.WithField("bucket", bucket.Name).Debug("listing missing bucket")
			return []string{}, nil
		}
		return nil, &objstore.TransportError{Op: "list", Bucket: bucket.Name, Key: prefix, Err: err}
	}
	return keys, nil
}
