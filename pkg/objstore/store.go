// Package objstore defines the read-only object store capability used by s3peek.
//
// Backends (pkg/s3svc, pkg/miniosvc) implement Store and translate their SDK
// errors into the sentinel errors of this package. The listing, preview and
// sampling services depend on Store only.
package objstore

import (
	"context"
	"io"
	"time"

	"github.com/sgaunet/s3peek/pkg/dto"
)

// Delimiter collapses nested keys into common prefixes when listing.
const Delimiter = "/"

// ObjectRecord is one object as reported by a listing or a metadata fetch.
type ObjectRecord struct {
	Key          string
	LastModified time.Time
	Size         int64
	StorageClass string
}

// Listing is a single page of a delimiter listing.
type Listing struct {
	Bucket         string
	Prefix         string
	CommonPrefixes []string
	Objects        []ObjectRecord
}

// Store is the object store capability. Implementations must be safe for
// concurrent use.
type Store interface {
	// ListBuckets returns the buckets visible with the configured credentials.
	ListBuckets(ctx context.Context) ([]dto.Bucket, error)

	// ListOnePrefix lists the immediate children of prefix using Delimiter.
	// A truncated result is an error (*ListingTooLargeError), never a partial page.
	ListOnePrefix(ctx context.Context, bucket, prefix string) (*Listing, error)

	// Stat fetches the metadata of a single object.
	Stat(ctx context.Context, bucket, key string) (ObjectRecord, error)

	// ReadRange returns bytes [start, end] of the object. end may exceed the
	// object size; the result is then shorter. A start past the end yields no
	// bytes, a negative start or an end before start fails with ErrInvalidRange.
	ReadRange(ctx context.Context, bucket, key string, start, end int64) ([]byte, error)

	// Open returns a stream over the whole object. The caller must close it.
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
