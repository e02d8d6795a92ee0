// Package sampler picks representative lines from anywhere in a large object
// using a few small ranged reads instead of a full scan.
package sampler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/sgaunet/s3peek/pkg/objstore"
)

// Defaults used when the configuration leaves them unset.
const (
	DefaultSampleCount  = 10
	DefaultWindowRadius = 4096
	DefaultConcurrency  = 4
)

var (
	// ErrUnsampleableLine is returned when the line under an offset is longer
	// than the window read around it.
	ErrUnsampleableLine = errors.New("line does not fit in the sampling window")
	// ErrEmptyObject is returned when sampling an object of size zero.
	ErrEmptyObject = errors.New("cannot sample an empty object")
	// ErrInvalidWindow is returned for a window radius lower than one byte.
	ErrInvalidWindow = errors.New("window radius must be at least 1 byte")
)

// Sampler draws random lines from objects of a Store.
type Sampler struct {
	store       objstore.Store
	log         *slog.Logger
	concurrency int

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a sampler reading from store.
// By default the logger writes to io.Discard.
func New(store objstore.Store) *Sampler {
	return &Sampler{
		store:       store,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		concurrency: DefaultConcurrency,
		rnd:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // sampling, not security
	}
}

// SetLogger sets the logger
func (s *Sampler) SetLogger(log *slog.Logger) {
	s.log = log
}

// SetRand replaces the source of offsets, for reproducible samples.
func (s *Sampler) SetRand(r *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd = r
}

// SetConcurrency bounds the number of ranged reads in flight per call.
// Values lower than one are ignored.
func (s *Sampler) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// Sample returns up to sampleCount distinct lines of the object. For each of
// sampleCount random offsets in [0, objectSize) the bytes within windowRadius
// of the offset are fetched and the line containing the offset is kept.
// Lines longer than the window are skipped; if no line could be sampled the
// call fails with ErrUnsampleableLine. objectSize must be positive and is
// checked before any read.
func (s *Sampler) Sample(ctx context.Context, bucket, key string, objectSize int64, sampleCount int, windowRadius int64) ([]string, error) {
	if objectSize <= 0 {
		return nil, fmt.Errorf("Sample s3://%s/%s: %w", bucket, key, ErrEmptyObject)
	}
	if sampleCount <= 0 {
		return []string{}, nil
	}
	if windowRadius < 1 {
		return nil, fmt.Errorf("Sample s3://%s/%s: %w", bucket, key, ErrInvalidWindow)
	}

	offsets := s.draw(objectSize, sampleCount)
	lines := make([][]byte, len(offsets))
	unsampleable := make([]bool, len(offsets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range offsets {
		g.Go(func() error {
			start := max(p-windowRadius, 0)
			end := p + windowRadius
			window, err := s.store.ReadRange(gctx, bucket, key, start, end)
			if err != nil {
				return fmt.Errorf("Sample: offset %d: %w", p, err)
			}
			atEnd := start+int64(len(window)) >= objectSize || int64(len(window)) < end-start+1
			line, err := lineAt(window, p-start, start == 0, atEnd)
			if err != nil {
				unsampleable[i] = true
				return nil
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	skipped := 0
	for i, l := range lines {
		if unsampleable[i] {
			skipped++
			continue
		}
		text := strings.ToValidUTF8(string(l), string(utf8.RuneError))
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		result = append(result, text)
	}
	if skipped == len(lines) {
		return nil, fmt.Errorf("Sample s3://%s/%s: %w (radius %d)", bucket, key, ErrUnsampleableLine, windowRadius)
	}

	s.log.Debug("Sample",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("offsets", len(offsets)),
		slog.Int("skipped", skipped),
		slog.Int("lines", len(result)))
	return result, nil
}

// draw returns n sorted offsets in [0, size).
func (s *Sampler) draw(size int64, n int) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	offsets := make([]int64, n)
	for i := range offsets {
		offsets[i] = s.rnd.Int64N(size)
	}
	slices.Sort(offsets)
	return offsets
}

// lineAt returns the line of window containing byte rel, without its newline.
// Offsets are resolved on raw bytes; decoding happens once the line is
// isolated. atStart and atEnd tell whether the window edges are the object
// edges: a line reaching a window edge that is not an object edge may
// continue outside of the window and is reported as ErrUnsampleableLine.
func lineAt(window []byte, rel int64, atStart, atEnd bool) ([]byte, error) {
	if rel < 0 || rel >= int64(len(window)) {
		return nil, ErrUnsampleableLine
	}
	left := bytes.LastIndexByte(window[:rel], '\n')
	if left < 0 && !atStart {
		return nil, ErrUnsampleableLine
	}
	right := bytes.IndexByte(window[rel:], '\n')
	end := len(window)
	if right >= 0 {
		end = int(rel) + right
	} else if !atEnd {
		return nil, ErrUnsampleableLine
	}
	return window[left+1 : end], nil
}
