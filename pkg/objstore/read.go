package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/sgaunet/s3peek/pkg/s3path"
)

// ErrInvalidChunkSize is returned for chunk sizes lower than one byte.
var ErrInvalidChunkSize = errors.New("chunk size must be at least 1 byte")

// Exists reports whether path designates an existing object.
// Unparseable paths and not-found errors yield false without error; any
// other store failure is returned.
func Exists(ctx context.Context, store Store, path string) (bool, error) {
	p, err := s3path.Parse(path)
	if err != nil {
		return false, nil
	}
	if _, err := store.Stat(ctx, p.Bucket(), p.Key()); err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadSequential streams the object in chunks of at most chunkSize bytes.
// The object is opened when iteration starts and closed when it ends, whether
// the stream is exhausted, the consumer stops early or an error occurs.
// Each yielded chunk is a fresh slice owned by the consumer.
func ReadSequential(ctx context.Context, store Store, bucket, key string, chunkSize int) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if chunkSize < 1 {
			yield(nil, ErrInvalidChunkSize)
			return
		}
		rc, err := store.Open(ctx, bucket, key)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rc.Close() //nolint:errcheck

		for {
			buf := make([]byte, chunkSize)
			n, err := io.ReadFull(rc, buf)
			switch {
			case errors.Is(err, io.EOF):
				return
			case errors.Is(err, io.ErrUnexpectedEOF):
				yield(buf[:n], nil)
				return
			case err != nil:
				yield(nil, Unavailable(fmt.Sprintf("ReadSequential s3://%s/%s", bucket, key), err))
				return
			}
			if !yield(buf, nil) {
				return
			}
		}
	}
}
