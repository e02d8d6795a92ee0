// Package miniosvc implements objstore.Store with the MinIO client. It is the
// store used when the configuration selects the minio provider.
package miniosvc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sgaunet/s3peek/pkg/config"
	"github.com/sgaunet/s3peek/pkg/dto"
	"github.com/sgaunet/s3peek/pkg/objstore"
)

// MinioAPI is the subset of the MinIO client used by the service.
type MinioAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// client adapts *minio.Client to MinioAPI. GetObject is lazy in minio-go, so
// the object is stat'ed right away to surface a missing key.
type client struct {
	*minio.Client
}

func (c client) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := c.Client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, err //nolint:wrapcheck // mapped by the caller
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close() //nolint:errcheck
		return nil, err //nolint:wrapcheck // mapped by the caller
	}
	return obj, nil
}

var _ objstore.Store = (*Service)(nil)

// Service is a MinIO backed objstore.Store.
type Service struct {
	client  MinioAPI
	maxKeys int
	log     *slog.Logger
}

// NewClient connects the MinIO client described by cfg. The endpoint may be
// given with or without a scheme; https forces TLS.
func NewClient(cfg config.S3Config) (MinioAPI, error) {
	host, secure := endpointHost(cfg.Endpoint, cfg.UseSSL)
	c, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("NewClient: %w", err)
	}
	return client{c}, nil
}

// NewMinioSvc creates the service. By default the logger writes to io.Discard.
func NewMinioSvc(cfg config.S3Config, c MinioAPI) *Service {
	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = config.DefaultMaxKeys
	}
	return &Service{
		client:  c,
		maxKeys: maxKeys,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(log *slog.Logger) {
	s.log = log
}

// ListBuckets implements objstore.Store.
func (s *Service) ListBuckets(ctx context.Context) ([]dto.Bucket, error) {
	raw, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, mapError("ListBuckets", "", "", err)
	}
	buckets := make([]dto.Bucket, len(raw))
	for i, b := range raw {
		buckets[i] = dto.Bucket{Name: b.Name, CreationDate: b.CreationDate}
	}
	return buckets, nil
}

// ListOnePrefix implements objstore.Store. minio-go paginates on its own, so
// the listing is cut as soon as it goes past maxKeys children.
func (s *Service) ListOnePrefix(ctx context.Context, bucket, prefix string) (*objstore.Listing, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := &objstore.Listing{
		Bucket:         bucket,
		Prefix:         prefix,
		CommonPrefixes: []string{},
		Objects:        []objstore.ObjectRecord{},
	}
	count := 0
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
		MaxKeys:   s.maxKeys,
	}) {
		if obj.Err != nil {
			return nil, mapError("ListOnePrefix", bucket, prefix, obj.Err)
		}
		count++
		if count > s.maxKeys {
			return nil, &objstore.ListingTooLargeError{Bucket: bucket, Prefix: prefix, MaxKeys: s.maxKeys}
		}
		if strings.HasSuffix(obj.Key, objstore.Delimiter) && obj.Key != prefix {
			l.CommonPrefixes = append(l.CommonPrefixes, obj.Key)
			continue
		}
		l.Objects = append(l.Objects, objstore.ObjectRecord{
			Key:          obj.Key,
			LastModified: obj.LastModified,
			Size:         obj.Size,
			StorageClass: storageClass(obj.StorageClass),
		})
	}
	s.log.Debug("ListOnePrefix",
		slog.String("bucket", bucket),
		slog.String("prefix", prefix),
		slog.Int("entries", count))
	return l, nil
}

// Stat implements objstore.Store.
func (s *Service) Stat(ctx context.Context, bucket, key string) (objstore.ObjectRecord, error) {
	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return objstore.ObjectRecord{}, mapError("Stat", bucket, key, err)
	}
	return objstore.ObjectRecord{
		Key:          key,
		LastModified: info.LastModified,
		Size:         info.Size,
		StorageClass: storageClass(info.StorageClass),
	}, nil
}

// ReadRange implements objstore.Store.
func (s *Service) ReadRange(ctx context.Context, bucket, key string, start, end int64) ([]byte, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("ReadRange: %w: bytes=%d-%d", objstore.ErrInvalidRange, start, end)
	}
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(start, end); err != nil {
		return nil, fmt.Errorf("ReadRange: %w: %w", objstore.ErrInvalidRange, err)
	}
	rc, err := s.client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		if isInvalidRange(err) {
			return []byte{}, nil
		}
		return nil, mapError("ReadRange", bucket, key, err)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, mapError("ReadRange", bucket, key, err)
	}
	return data, nil
}

// Open implements objstore.Store.
func (s *Service) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	rc, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError("Open", bucket, key, err)
	}
	return rc, nil
}

func storageClass(c string) string {
	if c == "" {
		return "STANDARD"
	}
	return c
}

func endpointHost(endpoint string, useSSL bool) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, useSSL
	}
	return u.Host, u.Scheme == "https" || useSSL
}
