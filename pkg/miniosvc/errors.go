package miniosvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"

	"github.com/sgaunet/s3peek/pkg/objstore"
)

// mapError translates a MinIO SDK error into the objstore taxonomy.
func mapError(op, bucket, key string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %w: %w", op, &objstore.NotFoundError{Bucket: bucket, Key: key}, err)
		}
		switch resp.Code {
		case "NoSuchBucket", "NoSuchKey", "NotFound":
			return fmt.Errorf("%s: %w: %w", op, &objstore.NotFoundError{Bucket: bucket, Key: key}, err)
		}
	}
	return objstore.Unavailable(op, err)
}

func isInvalidRange(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) &&
		(resp.Code == "InvalidRange" || resp.StatusCode == http.StatusRequestedRangeNotSatisfiable)
}
