// Package entry models the files and directories shown in a listing.
package entry

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sgaunet/s3peek/pkg/objstore"
	"github.com/sgaunet/s3peek/pkg/s3path"
)

// Kind discriminates the variants of Entry.
type Kind int

const (
	// KindFile marks an Entry holding a File.
	KindFile Kind = iota + 1
	// KindDirectory marks an Entry holding a Directory.
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// File is one stored object.
type File struct {
	Bucket       string
	Key          string
	LastModified time.Time
	Size         int64
	StorageClass string
}

// FileFromRecord builds a File from a listing or metadata record.
func FileFromRecord(bucket string, rec objstore.ObjectRecord) File {
	return File{
		Bucket:       bucket,
		Key:          rec.Key,
		LastModified: rec.LastModified,
		Size:         rec.Size,
		StorageClass: rec.StorageClass,
	}
}

// Path returns the canonical s3:// path.
func (f File) Path() string {
	return s3path.Scheme + f.Bucket + s3path.Separator + f.Key
}

// DisplayPath returns the path without the scheme.
func (f File) DisplayPath() string {
	return s3path.Display(f.Path())
}

// Name returns the last segment of the key.
func (f File) Name() string {
	return f.Key[strings.LastIndex(f.Key, s3path.Separator)+1:]
}

// HumanSize formats Size with SI units ("82 kB").
func (f File) HumanSize() string {
	if f.Size < 0 {
		return humanize.Bytes(0)
	}
	return humanize.Bytes(uint64(f.Size))
}

// Directory is a key prefix. It has no size nor timestamp: prefixes are
// synthesized by the delimiter listing and never stored.
type Directory struct {
	Bucket string
	Prefix string
}

// Path returns the canonical s3:// path, ending with a separator.
func (d Directory) Path() string {
	return s3path.Scheme + d.Bucket + s3path.Separator + d.Prefix
}

// DisplayPath returns the path without the scheme.
func (d Directory) DisplayPath() string {
	return s3path.Display(d.Path())
}

// Name returns the last prefix segment followed by the separator.
func (d Directory) Name() string {
	p := strings.TrimSuffix(d.Prefix, s3path.Separator)
	return p[strings.LastIndex(p, s3path.Separator)+1:] + s3path.Separator
}

// Entry holds either a File or a Directory, selected by Kind.
type Entry struct {
	kind Kind
	file File
	dir  Directory
}

// FromFile wraps f.
func FromFile(f File) Entry {
	return Entry{kind: KindFile, file: f}
}

// FromDirectory wraps d.
func FromDirectory(d Directory) Entry {
	return Entry{kind: KindDirectory, dir: d}
}

// Kind returns the discriminant. The zero Entry has an unknown kind.
func (e Entry) Kind() Kind { return e.kind }

// File returns the wrapped File; ok is false for other kinds.
func (e Entry) File() (File, bool) {
	return e.file, e.kind == KindFile
}

// Directory returns the wrapped Directory; ok is false for other kinds.
func (e Entry) Directory() (Directory, bool) {
	return e.dir, e.kind == KindDirectory
}

// Path returns the canonical path of the wrapped value.
func (e Entry) Path() string {
	switch e.kind {
	case KindFile:
		return e.file.Path()
	case KindDirectory:
		return e.dir.Path()
	default:
		return ""
	}
}

// Name returns the display filename of the wrapped value.
func (e Entry) Name() string {
	switch e.kind {
	case KindFile:
		return e.file.Name()
	case KindDirectory:
		return e.dir.Name()
	default:
		return ""
	}
}
