package s3svc

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sgaunet/s3peek/pkg/objstore"
)

// Stat returns the metadata of an object through HeadObject.
func (s *Service) Stat(ctx context.Context, bucket, key string) (objstore.ObjectRecord, error) {
	o, err := s.awsS3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return objstore.ObjectRecord{}, mapError("Stat", bucket, key, err)
	}
	class := string(o.StorageClass)
	if class == "" {
		class = "STANDARD"
	}
	return objstore.ObjectRecord{
		Key:          key,
		LastModified: aws.ToTime(o.LastModified),
		Size:         aws.ToInt64(o.ContentLength),
		StorageClass: class,
	}, nil
}

// ReadRange returns the bytes [start, end] of an object. The end may lie past
// the end of the object; a start past the end yields no bytes.
func (s *Service) ReadRange(ctx context.Context, bucket, key string, start, end int64) ([]byte, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("ReadRange: %w: bytes=%d-%d", objstore.ErrInvalidRange, start, end)
	}
	o, err := s.awsS3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		if isInvalidRange(err) {
			return []byte{}, nil
		}
		return nil, mapError("ReadRange", bucket, key, err)
	}
	defer o.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(o.Body)
	if err != nil {
		return nil, objstore.Unavailable("ReadRange", err)
	}
	s.log.Debug("ReadRange",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int64("start", start),
		slog.Int("bytes", len(data)))
	return data, nil
}

// Open returns a stream over the whole object. The caller closes it.
func (s *Service) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	o, err := s.awsS3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError("Open", bucket, key, err)
	}
	return o.Body, nil
}
