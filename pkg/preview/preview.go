// Package preview reads the beginning of an object without downloading it whole.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sgaunet/s3peek/pkg/objstore"
)

// Defaults used by the web layer when the configuration leaves them unset.
const (
	DefaultChunkSize     = 16384
	DefaultLines         = 10
	DefaultHeadBytes     = 1 << 20
	DefaultLineSeparator = "\n"
)

// ErrEmptySeparator is returned by Head when the line separator is empty.
var ErrEmptySeparator = errors.New("line separator must not be empty")

// Service previews objects from a Store.
type Service struct {
	store objstore.Store
	log   *slog.Logger
}

// NewService creates a preview service on top of store.
// By default the logger writes to io.Discard.
func NewService(store objstore.Store) *Service {
	return &Service{
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(log *slog.Logger) {
	s.log = log
}

// Head returns at most maxLines lines from the start of the object, reading
// it chunkSize bytes at a time and never more than maxBytes bytes in total.
// A line split across chunks is returned whole. The last line is returned
// even when the object does not end with sep, or cut short when the byte
// budget runs out in the middle of it.
func (s *Service) Head(ctx context.Context, bucket, key string, maxLines, maxBytes, chunkSize int, sep string) ([]string, error) {
	if sep == "" {
		return nil, ErrEmptySeparator
	}
	if maxLines <= 0 || maxBytes <= 0 {
		return []string{}, nil
	}

	lines := make([]string, 0, maxLines)
	var carry lineBuffer
	read, chunks := 0, 0
	exhausted := false
	for chunk, err := range objstore.ReadSequential(ctx, s.store, bucket, key, min(chunkSize, maxBytes)) {
		if err != nil {
			return nil, fmt.Errorf("Head: %w", err)
		}
		chunks++
		if rest := maxBytes - read; len(chunk) >= rest {
			chunk = chunk[:rest]
			exhausted = true
		}
		read += len(chunk)

		var complete []string
		complete, carry = splitLines(carry, chunk, []byte(sep))
		lines = append(lines, complete...)
		if len(lines) >= maxLines || exhausted {
			break
		}
	}
	tail := carry.buf
	if exhausted {
		tail = trimToRuneBoundary(tail)
	}
	if len(lines) < maxLines && len(tail) > 0 {
		lines = append(lines, decode(tail))
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	s.log.Debug("Head",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("chunks", chunks),
		slog.Int("bytes", read),
		slog.Int("lines", len(lines)))
	return lines, nil
}

// Read returns the first maxBytes bytes of the object as text, reading it
// chunkSize bytes at a time. A multi-byte character straddling the budget is
// dropped rather than cut.
func (s *Service) Read(ctx context.Context, bucket, key string, maxBytes, chunkSize int) (string, error) {
	if maxBytes <= 0 {
		return "", nil
	}

	var buf bytes.Buffer
	for chunk, err := range objstore.ReadSequential(ctx, s.store, bucket, key, chunkSize) {
		if err != nil {
			return "", fmt.Errorf("Read: %w", err)
		}
		buf.Write(chunk)
		if buf.Len() >= maxBytes {
			break
		}
	}

	raw := buf.Bytes()
	if len(raw) >= maxBytes {
		raw = trimToRuneBoundary(raw[:maxBytes])
	}
	s.log.Debug("Read",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("bytes", len(raw)))
	return decode(raw), nil
}

// lineBuffer holds the bytes of the line being assembled across chunks.
// The first scanned bytes of buf are known not to contain the separator.
type lineBuffer struct {
	buf     []byte
	scanned int
}

// splitLines appends chunk to carry and cuts out every line completed by it.
// Only the bytes not scanned yet are searched, backing off len(sep)-1 bytes
// for a separator split by the chunk boundary. The returned carry holds the
// trailing fragment and reuses the backing array of the one passed in.
// Splitting happens on bytes so that multi-byte characters cut by a chunk
// boundary are reassembled before decoding.
func splitLines(carry lineBuffer, chunk, sep []byte) (lines []string, next lineBuffer) {
	buf := append(carry.buf, chunk...)
	from := max(carry.scanned-len(sep)+1, 0)
	start := 0
	for {
		i := bytes.Index(buf[from:], sep)
		if i < 0 {
			break
		}
		end := from + i
		lines = append(lines, decode(buf[start:end]))
		start = end + len(sep)
		from = start
	}
	if start > 0 {
		buf = buf[:copy(buf, buf[start:])]
	}
	return lines, lineBuffer{buf: buf, scanned: len(buf)}
}

// trimToRuneBoundary drops an incomplete UTF-8 sequence at the end of b.
func trimToRuneBoundary(b []byte) []byte {
	i := len(b) - 1
	for i >= 0 && i > len(b)-utf8.UTFMax && !utf8.RuneStart(b[i]) {
		i--
	}
	if i < 0 || utf8.FullRune(b[i:]) {
		return b
	}
	return b[:i]
}

func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
