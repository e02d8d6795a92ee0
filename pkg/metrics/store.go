package metrics

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sgaunet/s3peek/pkg/dto"
	"github.com/sgaunet/s3peek/pkg/objstore"
)

// Store operation results used as label values.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultTooLarge = "too_large"
	resultError    = "error"
)

// StoreMetrics holds the collectors of the object store decorator.
type StoreMetrics struct {
	ops     *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewStoreMetrics registers store metrics on reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "ops_total",
		Help:      "Total number of object store operations by result.",
	}, []string{"op", "result"})
	bytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "bytes_total",
		Help:      "Total bytes fetched from the object store.",
	}, []string{"op"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "op_duration_seconds",
		Help:      "Histogram of object store operation durations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	reg.MustRegister(ops, bytes, latency)
	return &StoreMetrics{ops: ops, bytes: bytes, latency: latency}
}

// Observe records one operation.
func (m *StoreMetrics) Observe(op string, n int64, err error, dur time.Duration) {
	m.ops.WithLabelValues(op, result(err)).Inc()
	m.latency.WithLabelValues(op).Observe(dur.Seconds())
	if n > 0 {
		m.bytes.WithLabelValues(op).Add(float64(n))
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, objstore.ErrNotFound):
		return resultNotFound
	case errors.Is(err, objstore.ErrListingTooLarge):
		return resultTooLarge
	default:
		return resultError
	}
}

// Store wraps an objstore.Store and records every call.
type Store struct {
	next objstore.Store
	m    *StoreMetrics
}

var _ objstore.Store = (*Store)(nil)

// InstrumentStore returns next decorated with the collectors of m.
func InstrumentStore(next objstore.Store, m *StoreMetrics) *Store {
	return &Store{next: next, m: m}
}

// ListBuckets implements objstore.Store.
func (s *Store) ListBuckets(ctx context.Context) ([]dto.Bucket, error) {
	start := time.Now()
	b, err := s.next.ListBuckets(ctx)
	s.m.Observe("ListBuckets", 0, err, time.Since(start))
	return b, err //nolint:wrapcheck
}

// ListOnePrefix implements objstore.Store.
func (s *Store) ListOnePrefix(ctx context.Context, bucket, prefix string) (*objstore.Listing, error) {
	start := time.Now()
	l, err := s.next.ListOnePrefix(ctx, bucket, prefix)
	s.m.Observe("ListOnePrefix", 0, err, time.Since(start))
	return l, err //nolint:wrapcheck
}

// Stat implements objstore.Store.
func (s *Store) Stat(ctx context.Context, bucket, key string) (objstore.ObjectRecord, error) {
	start := time.Now()
	rec, err := s.next.Stat(ctx, bucket, key)
	s.m.Observe("Stat", 0, err, time.Since(start))
	return rec, err //nolint:wrapcheck
}

// ReadRange implements objstore.Store.
func (s *Store) ReadRange(ctx context.Context, bucket, key string, start, end int64) ([]byte, error) {
	t := time.Now()
	data, err := s.next.ReadRange(ctx, bucket, key, start, end)
	s.m.Observe("ReadRange", int64(len(data)), err, time.Since(t))
	return data, err //nolint:wrapcheck
}

// Open implements objstore.Store. Bytes are counted as the stream is read
// and the latency is observed when it is closed.
func (s *Store) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := s.next.Open(ctx, bucket, key)
	if err != nil {
		s.m.Observe("Open", 0, err, time.Since(start))
		return nil, err //nolint:wrapcheck
	}
	return &countingReader{rc: rc, m: s.m, start: start}, nil
}

type countingReader struct {
	rc    io.ReadCloser
	m     *StoreMetrics
	start time.Time
	n     int64
	err   error
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	r.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		r.err = err
	}
	return n, err //nolint:wrapcheck
}

func (r *countingReader) Close() error {
	err := r.rc.Close()
	r.m.Observe("Open", r.n, r.err, time.Since(r.start))
	return err //nolint:wrapcheck
}
