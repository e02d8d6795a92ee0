package s3svc

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sgaunet/s3peek/pkg/objstore"
)

// ListOnePrefix lists the direct children of prefix in a single request.
// A truncated answer means the prefix holds more than MaxKeys children and
// is refused with an *objstore.ListingTooLargeError rather than paginated.
func (s *Service) ListOnePrefix(ctx context.Context, bucket, prefix string) (*objstore.Listing, error) {
	out, err := s.awsS3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String(objstore.Delimiter),
		MaxKeys:   aws.Int32(int32(s.cfg.MaxKeys)), //nolint:gosec // bounded by config
	})
	if err != nil {
		return nil, mapError("ListOnePrefix", bucket, prefix, err)
	}
	if aws.ToBool(out.IsTruncated) {
		maxKeys := s.cfg.MaxKeys
		if out.MaxKeys != nil {
			maxKeys = int(*out.MaxKeys)
		}
		return nil, &objstore.ListingTooLargeError{Bucket: bucket, Prefix: prefix, MaxKeys: maxKeys}
	}

	l := &objstore.Listing{
		Bucket:         bucket,
		Prefix:         prefix,
		CommonPrefixes: make([]string, 0, len(out.CommonPrefixes)),
		Objects:        make([]objstore.ObjectRecord, 0, len(out.Contents)),
	}
	for _, cp := range out.CommonPrefixes {
		l.CommonPrefixes = append(l.CommonPrefixes, aws.ToString(cp.Prefix))
	}
	for _, obj := range out.Contents {
		l.Objects = append(l.Objects, objstore.ObjectRecord{
			Key:          aws.ToString(obj.Key),
			LastModified: aws.ToTime(obj.LastModified),
			Size:         aws.ToInt64(obj.Size),
			StorageClass: string(obj.StorageClass),
		})
	}
	s.log.Debug("ListOnePrefix",
		slog.String("bucket", bucket),
		slog.String("prefix", prefix),
		slog.Int("prefixes", len(l.CommonPrefixes)),
		slog.Int("objects", len(l.Objects)))
	return l, nil
}
