// Package s3path parses and formats s3://<bucket>/<key> addresses.
package s3path

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Scheme is the marker every canonical path starts with.
const Scheme = "s3://"

// Separator splits key segments. A key ending with it is a prefix.
const Separator = "/"

// ErrInvalidPath is returned when a string is not an s3://<bucket>/<key> address.
var ErrInvalidPath = errors.New("invalid s3 path")

var pathRe = regexp.MustCompile(`^s3://([^/]+)/(?s:(.*))$`)

// InvalidPathError carries the rejected input.
type InvalidPathError struct {
	Path string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("not a recognizable s3 path %q", e.Path)
}

// Unwrap returns ErrInvalidPath.
func (e *InvalidPathError) Unwrap() error {
	return ErrInvalidPath
}

// Path is a parsed bucket and key. The zero value is not valid.
type Path struct {
	bucket string
	key    string
}

// Parse splits an s3://<bucket>/<key> string. The key may be empty.
func Parse(path string) (Path, error) {
	m := pathRe.FindStringSubmatch(path)
	if m == nil {
		return Path{}, &InvalidPathError{Path: path}
	}
	return Path{bucket: m[1], key: m[2]}, nil
}

// New builds a Path from its parts.
func New(bucket, key string) (Path, error) {
	return Parse(Scheme + bucket + Separator + key)
}

// Normalize prepends the scheme when it is missing.
func Normalize(path string) string {
	if strings.HasPrefix(path, Scheme) {
		return path
	}
	return Scheme + path
}

// Display strips the scheme. The result must be normalized again before parsing.
func Display(path string) string {
	return strings.TrimPrefix(path, Scheme)
}

// Bucket returns the bucket name.
func (p Path) Bucket() string { return p.bucket }

// Key returns the key or key prefix.
func (p Path) Key() string { return p.key }

// String returns the canonical form.
func (p Path) String() string {
	return Scheme + p.bucket + Separator + p.key
}

// Display returns the canonical form without the scheme.
func (p Path) Display() string {
	return Display(p.String())
}

// IsPrefix reports whether the path designates a directory-like prefix.
// The bucket root (empty key) is a prefix.
func (p Path) IsPrefix() bool {
	return p.key == "" || strings.HasSuffix(p.key, Separator)
}

// Name returns the last key segment, without any trailing separator.
// For the bucket root it returns the bucket name.
func (p Path) Name() string {
	k := strings.TrimSuffix(p.key, Separator)
	if k == "" {
		return p.bucket
	}
	return k[strings.LastIndex(k, Separator)+1:]
}

// Parent returns the prefix containing p. The parent of the bucket root is itself.
func (p Path) Parent() Path {
	k := strings.TrimSuffix(p.key, Separator)
	i := strings.LastIndex(k, Separator)
	if i < 0 {
		return Path{bucket: p.bucket}
	}
	return Path{bucket: p.bucket, key: k[:i+1]}
}
