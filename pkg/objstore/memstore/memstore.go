// Package memstore is an in-memory objstore.Store used by tests.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sgaunet/s3peek/pkg/dto"
	"github.com/sgaunet/s3peek/pkg/objstore"
)

// DefaultMaxKeys mirrors the S3 page size.
const DefaultMaxKeys = 1000

type object struct {
	data         []byte
	lastModified time.Time
	storageClass string
}

// Store keeps objects in memory and counts the calls made against it.
type Store struct {
	mu      sync.Mutex
	buckets map[string]map[string]object
	created map[string]time.Time
	calls   map[string]int
	opened  int
	closed  int
	read    int64

	// MaxKeys is the page size after which listings are reported truncated.
	MaxKeys int
	// Err, when set, is returned by every operation.
	Err error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		buckets: map[string]map[string]object{},
		created: map[string]time.Time{},
		calls:   map[string]int{},
		MaxKeys: DefaultMaxKeys,
	}
}

// Put stores data under bucket/key, creating the bucket if needed.
func (s *Store) Put(bucket, key string, data []byte) {
	s.PutWithClass(bucket, key, data, "STANDARD")
}

// PutWithClass stores data with an explicit storage class.
func (s *Store) PutWithClass(bucket, key string, data []byte, storageClass string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = map[string]object{}
		s.created[bucket] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	s.buckets[bucket][key] = object{
		data:         slices.Clone(data),
		lastModified: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		storageClass: storageClass,
	}
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// OpenStreams returns the number of streams opened and not yet closed.
func (s *Store) OpenStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened - s.closed
}

// BytesRead returns the number of bytes read from streams returned by Open.
func (s *Store) BytesRead() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read
}

func (s *Store) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.Err
}

func (s *Store) lookup(bucket, key string) (object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.buckets[bucket][key]
	if !ok {
		return object{}, &objstore.NotFoundError{Bucket: bucket, Key: key}
	}
	return o, nil
}

// ListBuckets implements objstore.Store.
func (s *Store) ListBuckets(_ context.Context) ([]dto.Bucket, error) {
	if err := s.record("ListBuckets"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buckets := make([]dto.Bucket, 0, len(s.buckets))
	for name := range s.buckets {
		buckets = append(buckets, dto.Bucket{Name: name, CreationDate: s.created[name]})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })
	return buckets, nil
}

// ListOnePrefix implements objstore.Store.
func (s *Store) ListOnePrefix(_ context.Context, bucket, prefix string) (*objstore.Listing, error) {
	if err := s.record("ListOnePrefix"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	objects, ok := s.buckets[bucket]
	if !ok {
		return nil, &objstore.NotFoundError{Bucket: bucket}
	}

	keys := make([]string, 0, len(objects))
	for k := range objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	listing := &objstore.Listing{Bucket: bucket, Prefix: prefix}
	seen := map[string]bool{}
	for _, k := range keys {
		rest := k[len(prefix):]
		if i := strings.Index(rest, objstore.Delimiter); i >= 0 {
			cp := prefix + rest[:i+1]
			if !seen[cp] {
				seen[cp] = true
				listing.CommonPrefixes = append(listing.CommonPrefixes, cp)
			}
			continue
		}
		o := objects[k]
		listing.Objects = append(listing.Objects, objstore.ObjectRecord{
			Key:          k,
			LastModified: o.lastModified,
			Size:         int64(len(o.data)),
			StorageClass: o.storageClass,
		})
	}
	if len(listing.CommonPrefixes)+len(listing.Objects) > s.MaxKeys {
		return nil, &objstore.ListingTooLargeError{Bucket: bucket, Prefix: prefix, MaxKeys: s.MaxKeys}
	}
	return listing, nil
}

// Stat implements objstore.Store.
func (s *Store) Stat(_ context.Context, bucket, key string) (objstore.ObjectRecord, error) {
	if err := s.record("Stat"); err != nil {
		return objstore.ObjectRecord{}, err
	}
	o, err := s.lookup(bucket, key)
	if err != nil {
		return objstore.ObjectRecord{}, err
	}
	return objstore.ObjectRecord{
		Key:          key,
		LastModified: o.lastModified,
		Size:         int64(len(o.data)),
		StorageClass: o.storageClass,
	}, nil
}

// ReadRange implements objstore.Store.
func (s *Store) ReadRange(_ context.Context, bucket, key string, start, end int64) ([]byte, error) {
	if err := s.record("ReadRange"); err != nil {
		return nil, err
	}
	o, err := s.lookup(bucket, key)
	if err != nil {
		return nil, err
	}
	if start < 0 || end < start {
		return nil, fmt.Errorf("ReadRange: %w: bytes=%d-%d", objstore.ErrInvalidRange, start, end)
	}
	size := int64(len(o.data))
	if start >= size {
		return []byte{}, nil
	}
	end = min(end+1, size)
	return slices.Clone(o.data[start:end]), nil
}

// Open implements objstore.Store.
func (s *Store) Open(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := s.record("Open"); err != nil {
		return nil, err
	}
	o, err := s.lookup(bucket, key)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.opened++
	s.mu.Unlock()
	return &stream{Reader: bytes.NewReader(o.data), store: s}, nil
}

type stream struct {
	*bytes.Reader
	store  *Store
	closed bool
}

func (r *stream) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.store.mu.Lock()
	r.store.read += int64(n)
	r.store.mu.Unlock()
	return n, err
}

func (r *stream) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.store.mu.Lock()
	r.store.closed++
	r.store.mu.Unlock()
	return nil
}
