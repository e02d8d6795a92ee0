package s3svc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sgaunet/s3peek/pkg/objstore"
)

// ErrUnexpectedStatus is returned when the store answers with a non 2xx status
// that has no more specific meaning.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// mapError translates SDK errors into the objstore taxonomy.
func mapError(op, bucket, key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isNotFound(err) {
		return fmt.Errorf("%s: %w: %w", op, &objstore.NotFoundError{Bucket: bucket, Key: key}, err)
	}
	if status := responseStatus(err); status != 0 && (status < 200 || status > 299) {
		return objstore.Unavailable(op, fmt.Errorf("%w %d: %w", ErrUnexpectedStatus, status, err))
	}
	return objstore.Unavailable(op, err)
}

// responseStatus returns the HTTP status carried by err, or 0 if there is none.
func responseStatus(err error) int {
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		return withStatus.HTTPStatusCode()
	}
	return 0
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsk) || errors.As(err, &nf) || errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return responseStatus(err) == http.StatusNotFound
}

func isInvalidRange(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
		return true
	}
	return responseStatus(err) == http.StatusRequestedRangeNotSatisfiable
}
