package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JonMunkholm/marvel-explorer/internal/core"
)

// S3Config configures an S3Source.
type S3Config struct {
	Location
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Source reads snapshots from an S3-compatible bucket.
type S3Source struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Source creates a bucket source. No request is made until Open.
func NewS3Source(cfg S3Config) (*S3Source, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 source: endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 source: %w", err)
	}

	return &S3Source{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key implements core.SnapshotSource.
func (s *S3Source) Key(table string) string {
	return Key(s.prefix, table)
}

// Open implements core.SnapshotSource. The object is stat'ed before it is
// returned so a missing key fails here rather than mid-parse.
func (s *S3Source) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.classify(key, err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, s.classify(key, err)
	}
	return obj, nil
}

// classify wraps err in the core snapshot error matching its S3 error code.
func (s *S3Source) classify(key string, err error) error {
	sentinel := core.ErrSnapshotUnavailable
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		sentinel = core.ErrSnapshotNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		sentinel = core.ErrSnapshotAccessDenied
	}
	return fmt.Errorf("%w: s3://%s/%s: %w", sentinel, s.bucket, key, err)
}
