package objstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/s3peek/pkg/objstore"
	"github.com/sgaunet/s3peek/pkg/objstore/memstore"
)

func TestExists(t *testing.T) {
	store := memstore.New()
	store.Put("bucket", "dir/file.txt", []byte("hello"))
	ctx := context.Background()

	tests := []struct {
		name  string
		path  string
		want  bool
		calls int
	}{
		{name: "existing object", path: "s3://bucket/dir/file.txt", want: true, calls: 1},
		{name: "missing key", path: "s3://bucket/dir/other.txt", want: false, calls: 1},
		{name: "missing bucket", path: "s3://nobucket/file.txt", want: false, calls: 1},
		{name: "unparseable path", path: "bucket/dir/file.txt", want: false, calls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := store.Calls("Stat")
			ok, err := objstore.Exists(ctx, store, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.calls, store.Calls("Stat")-before)
		})
	}
}

func TestExistsPropagatesStoreFailure(t *testing.T) {
	store := memstore.New()
	store.Err = objstore.Unavailable("Stat", errors.New("connection refused"))

	ok, err := objstore.Exists(context.Background(), store, "s3://bucket/key")
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, objstore.ErrStoreUnavailable)
}

func TestReadSequential(t *testing.T) {
	store := memstore.New()
	store.Put("b", "k", []byte("abcdefgh"))

	tests := []struct {
		name      string
		chunkSize int
		want      []string
	}{
		{name: "exact multiple", chunkSize: 4, want: []string{"abcd", "efgh"}},
		{name: "short last chunk", chunkSize: 3, want: []string{"abc", "def", "gh"}},
		{name: "single byte", chunkSize: 1, want: []string{"a", "b", "c", "d", "e", "f", "g", "h"}},
		{name: "larger than object", chunkSize: 100, want: []string{"abcdefgh"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for chunk, err := range objstore.ReadSequential(context.Background(), store, "b", "k", tt.chunkSize) {
				require.NoError(t, err)
				assert.LessOrEqual(t, len(chunk), tt.chunkSize)
				got = append(got, string(chunk))
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 0, store.OpenStreams())
		})
	}
}

func TestReadSequentialEarlyStopReleasesStream(t *testing.T) {
	store := memstore.New()
	store.Put("b", "k", []byte("0123456789"))

	n := 0
	for _, err := range objstore.ReadSequential(context.Background(), store, "b", "k", 2) {
		require.NoError(t, err)
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, store.Calls("Open"))
	assert.Equal(t, 0, store.OpenStreams())
}

func TestReadSequentialEmptyObject(t *testing.T) {
	store := memstore.New()
	store.Put("b", "empty", nil)

	count := 0
	for _, err := range objstore.ReadSequential(context.Background(), store, "b", "empty", 8) {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count)
	assert.Equal(t, 0, store.OpenStreams())
}

func TestReadSequentialErrors(t *testing.T) {
	store := memstore.New()
	store.Put("b", "k", []byte("data"))

	t.Run("missing object", func(t *testing.T) {
		for _, err := range objstore.ReadSequential(context.Background(), store, "b", "nope", 4) {
			assert.ErrorIs(t, err, objstore.ErrNotFound)
		}
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		before := store.Calls("Open")
		for _, err := range objstore.ReadSequential(context.Background(), store, "b", "k", 0) {
			assert.ErrorIs(t, err, objstore.ErrInvalidChunkSize)
		}
		assert.Equal(t, before, store.Calls("Open"))
	})
}

func TestErrorTypes(t *testing.T) {
	var err error = &objstore.ListingTooLargeError{Bucket: "b", Prefix: "p/", MaxKeys: 1000}
	assert.ErrorIs(t, err, objstore.ErrListingTooLarge)
	assert.Contains(t, err.Error(), "1000")

	err = &objstore.NotFoundError{Bucket: "b", Key: "k"}
	assert.True(t, objstore.IsNotFound(err))
	assert.Equal(t, "s3://b/k: not found", err.Error())

	cause := errors.New("boom")
	err = objstore.Unavailable("ListOnePrefix", cause)
	assert.ErrorIs(t, err, objstore.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}
