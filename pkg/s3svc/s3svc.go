// Package s3svc implements objstore.Store on top of the AWS SDK v2 S3 client.
// It talks to AWS or to any S3 compatible endpoint.
package s3svc

import (
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sgaunet/s3peek/pkg/config"
	"github.com/sgaunet/s3peek/pkg/objstore"
)

// S3API is the subset of *s3.Client used by the service.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ objstore.Store = (*Service)(nil)

// Service is the struct for the S3 service
type Service struct {
	cfg         config.S3Config
	awsS3Client S3API
	log         *slog.Logger
}

// NewS3Svc creates a new S3 service
// It requires a config.S3Config and an S3API (usually *s3.Client)
// By default the logger is set to write to /dev/null
func NewS3Svc(cfg config.S3Config, client S3API) *Service {
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = config.DefaultMaxKeys
	}
	s := &Service{
		cfg:         cfg,
		awsS3Client: client,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return s
}

// SetLogger sets the logger
func (s *Service) SetLogger(log *slog.Logger) {
	s.log = log
}
