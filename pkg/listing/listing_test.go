package listing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/s3peek/pkg/entry"
	"github.com/sgaunet/s3peek/pkg/listing"
	"github.com/sgaunet/s3peek/pkg/objstore"
	"github.com/sgaunet/s3peek/pkg/objstore/memstore"
	"github.com/sgaunet/s3peek/pkg/s3path"
)

func newStore() *memstore.Store {
	store := memstore.New()
	store.Put("bucket", "dir/file.txt", []byte("0123456789"))
	store.Put("bucket", "dir/sub/nested.txt", []byte("nested"))
	store.Put("bucket", "dir/sub/deeper/x", []byte("x"))
	store.Put("bucket", "top.csv", []byte("a,b\n1,2\n"))
	return store
}

func TestListPartitionsFilesAndDirectories(t *testing.T) {
	svc := listing.NewService(newStore())

	res, err := svc.List(context.Background(), "s3://bucket/dir/")
	require.NoError(t, err)

	require.Len(t, res.Dirs, 1)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "dir/sub/", res.Dirs[0].Prefix)
	assert.Equal(t, "dir/file.txt", res.Files[0].Key)
	assert.Equal(t, 1, res.Stats.NumDirs)
	assert.Equal(t, 1, res.Stats.NumFiles)
	assert.Equal(t, int64(10), res.Stats.TotalFileSize)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, entry.KindDirectory, res.Entries[0].Kind())
	assert.Equal(t, entry.KindFile, res.Entries[1].Kind())
}

func TestListWithoutScheme(t *testing.T) {
	svc := listing.NewService(newStore())

	res, err := svc.List(context.Background(), "bucket/")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/", res.Path.String())
	assert.Equal(t, 1, res.Stats.NumDirs)
	assert.Equal(t, 1, res.Stats.NumFiles)
	assert.Equal(t, int64(8), res.Stats.TotalFileSize)
}

func TestListEmptyPrefixIsNotFound(t *testing.T) {
	svc := listing.NewService(newStore())

	res, err := svc.List(context.Background(), "s3://bucket/missing/")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestListIgnoresFolderPlaceholder(t *testing.T) {
	store := newStore()
	store.Put("bucket", "empty/", nil)
	svc := listing.NewService(store)

	_, err := svc.List(context.Background(), "s3://bucket/empty/")
	assert.ErrorIs(t, err, objstore.ErrNotFound)

	res, err := svc.List(context.Background(), "s3://bucket/")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.NumDirs)
}

func TestListTruncatedFails(t *testing.T) {
	store := newStore()
	store.MaxKeys = 1
	svc := listing.NewService(store)

	res, err := svc.List(context.Background(), "s3://bucket/dir/")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, objstore.ErrListingTooLarge)
	assert.NotErrorIs(t, err, objstore.ErrNotFound)
}

func TestListInvalidPath(t *testing.T) {
	store := newStore()
	svc := listing.NewService(store)

	_, err := svc.List(context.Background(), "s3://")
	assert.ErrorIs(t, err, s3path.ErrInvalidPath)
	assert.Zero(t, store.Calls("ListOnePrefix"))
}

func TestStat(t *testing.T) {
	svc := listing.NewService(newStore())

	f, err := svc.Stat(context.Background(), "bucket/dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.Size)
	assert.Equal(t, "file.txt", f.Name())
	assert.Equal(t, "STANDARD", f.StorageClass)
	assert.False(t, f.LastModified.IsZero())

	_, err = svc.Stat(context.Background(), "bucket/dir/none.txt")
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestPartition(t *testing.T) {
	entries := []entry.Entry{
		entry.FromDirectory(entry.Directory{Bucket: "b", Prefix: "a/"}),
		entry.FromFile(entry.File{Bucket: "b", Key: "x", Size: 3}),
		entry.FromDirectory(entry.Directory{Bucket: "b", Prefix: "c/"}),
		entry.FromFile(entry.File{Bucket: "b", Key: "y", Size: 4}),
	}

	files, dirs, err := listing.Partition(entries)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, []string{files[0].Key, files[1].Key})
	assert.Equal(t, []string{"a/", "c/"}, []string{dirs[0].Prefix, dirs[1].Prefix})

	st := listing.Stats(files, dirs)
	assert.Equal(t, int64(7), st.TotalFileSize)
}

func TestPartitionRejectsUnknownKind(t *testing.T) {
	entries := []entry.Entry{
		entry.FromFile(entry.File{Bucket: "b", Key: "x"}),
		{},
	}

	_, _, err := listing.Partition(entries)
	assert.ErrorIs(t, err, listing.ErrUnknownEntryKind)
}
