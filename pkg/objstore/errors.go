package objstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the store has no object (or no key under a prefix).
	ErrNotFound = errors.New("object not found")
	// ErrListingTooLarge is returned when a listing does not fit in one page.
	ErrListingTooLarge = errors.New("listing too large")
	// ErrStoreUnavailable is returned on non-2xx responses and transport failures.
	ErrStoreUnavailable = errors.New("object store unavailable")
	// ErrInvalidRange is returned by ReadRange for a negative start or end < start.
	ErrInvalidRange = errors.New("invalid byte range")
)

// NotFoundError names the missing bucket/key.
type NotFoundError struct {
	Bucket string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("s3://%s/%s: not found", e.Bucket, e.Key)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ListingTooLargeError is returned when the store marks a listing as truncated.
type ListingTooLargeError struct {
	Bucket  string
	Prefix  string
	MaxKeys int
}

func (e *ListingTooLargeError) Error() string {
	return fmt.Sprintf("listing of s3://%s/%s returned more than %d entries", e.Bucket, e.Prefix, e.MaxKeys)
}

// Unwrap returns ErrListingTooLarge.
func (e *ListingTooLargeError) Unwrap() error {
	return ErrListingTooLarge
}

// Unavailable wraps a backend failure as ErrStoreUnavailable while keeping the cause.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, cause)
}

// IsNotFound reports whether err means the object or prefix does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
