package s3path_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/s3peek/pkg/s3path"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "file key", input: "s3://bucket/dir/file.txt", wantBucket: "bucket", wantKey: "dir/file.txt"},
		{name: "prefix", input: "s3://bucket/dir/", wantBucket: "bucket", wantKey: "dir/"},
		{name: "bucket root", input: "s3://bucket/", wantBucket: "bucket", wantKey: ""},
		{name: "key with spaces", input: "s3://b/a b/c d", wantBucket: "b", wantKey: "a b/c d"},
		{name: "missing scheme", input: "bucket/key", wantErr: true},
		{name: "missing bucket", input: "s3:///key", wantErr: true},
		{name: "bucket without separator", input: "s3://bucket", wantErr: true},
		{name: "other scheme", input: "gs://bucket/key", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s3path.Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, s3path.ErrInvalidPath))
				var ipe *s3path.InvalidPathError
				require.ErrorAs(t, err, &ipe)
				assert.Equal(t, tt.input, ipe.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, p.Bucket())
			assert.Equal(t, tt.wantKey, p.Key())
			assert.Equal(t, tt.input, p.String())
		})
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	for _, in := range []string{"s3://bucket/", "s3://bucket/a/b", "s3://bucket/a/b/"} {
		direct, err := s3path.Parse(in)
		require.NoError(t, err)

		normalized, err := s3path.Parse(s3path.Normalize(in))
		require.NoError(t, err)
		assert.Equal(t, direct, normalized, in)

		fromDisplay, err := s3path.Parse(s3path.Normalize(s3path.Display(in)))
		require.NoError(t, err)
		assert.Equal(t, direct, fromDisplay, in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := s3path.Normalize("bucket/key")
	assert.Equal(t, "s3://bucket/key", once)
	assert.Equal(t, once, s3path.Normalize(once))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "bucket/key", s3path.Display("s3://bucket/key"))
	assert.Equal(t, "bucket/key", s3path.Display("bucket/key"))

	p, err := s3path.New("bucket", "dir/")
	require.NoError(t, err)
	assert.Equal(t, "bucket/dir/", p.Display())
}

func TestPathAttributes(t *testing.T) {
	tests := []struct {
		input      string
		isPrefix   bool
		name       string
		parentPath string
	}{
		{input: "s3://b/", isPrefix: true, name: "b", parentPath: "s3://b/"},
		{input: "s3://b/file.txt", isPrefix: false, name: "file.txt", parentPath: "s3://b/"},
		{input: "s3://b/dir/", isPrefix: true, name: "dir", parentPath: "s3://b/"},
		{input: "s3://b/dir/sub/", isPrefix: true, name: "sub", parentPath: "s3://b/dir/"},
		{input: "s3://b/dir/sub/f.csv", isPrefix: false, name: "f.csv", parentPath: "s3://b/dir/sub/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := s3path.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.isPrefix, p.IsPrefix())
			assert.Equal(t, tt.name, p.Name())
			assert.Equal(t, tt.parentPath, p.Parent().String())
		})
	}
}
