// Package listing lists one prefix level of a bucket and partitions it into
// files and directories.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sgaunet/s3peek/pkg/dto"
	"github.com/sgaunet/s3peek/pkg/entry"
	"github.com/sgaunet/s3peek/pkg/objstore"
	"github.com/sgaunet/s3peek/pkg/s3path"
)

// ErrUnknownEntryKind is returned when an entry is neither a file nor a directory.
var ErrUnknownEntryKind = errors.New("entry is neither a file nor a directory")

// Result is the content of one prefix.
type Result struct {
	Path    s3path.Path
	Entries []entry.Entry // directories first, then files
	Files   []entry.File
	Dirs    []entry.Directory
	Stats   dto.DirStats
}

// Service lists prefixes against a Store.
type Service struct {
	store objstore.Store
	log   *slog.Logger
}

// NewService creates a listing service on top of store.
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

// List returns the immediate children of path. The scheme is optional.
// A prefix without any key below it does not exist: List then returns an
// error wrapping objstore.ErrNotFound.
func (s *Service) List(ctx context.Context, path string) (*Result, error) {
	p, err := s3path.Parse(s3path.Normalize(path))
	if err != nil {
		return nil, err
	}

	page, err := s.store.ListOnePrefix(ctx, p.Bucket(), p.Key())
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	entries := make([]entry.Entry, 0, len(page.CommonPrefixes)+len(page.Objects))
	for _, prefix := range page.CommonPrefixes {
		entries = append(entries, entry.FromDirectory(entry.Directory{Bucket: p.Bucket(), Prefix: prefix}))
	}
	for _, rec := range page.Objects {
		// folder placeholder created by some clients for the prefix itself
		if rec.Key == p.Key() {
			continue
		}
		entries = append(entries, entry.FromFile(entry.FileFromRecord(p.Bucket(), rec)))
	}

	if len(entries) == 0 {
		return nil, &objstore.NotFoundError{Bucket: p.Bucket(), Key: p.Key()}
	}

	files, dirs, err := Partition(entries)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	res := &Result{
		Path:    p,
		Entries: entries,
		Files:   files,
		Dirs:    dirs,
		Stats:   Stats(files, dirs),
	}
	s.log.Debug("List",
		slog.String("path", p.String()),
		slog.Int("numdirs", res.Stats.NumDirs),
		slog.Int("numfiles", res.Stats.NumFiles))
	return res, nil
}

// Stat builds a File from a metadata fetch on path.
func (s *Service) Stat(ctx context.Context, path string) (entry.File, error) {
	p, err := s3path.Parse(s3path.Normalize(path))
	if err != nil {
		return entry.File{}, err
	}
	rec, err := s.store.Stat(ctx, p.Bucket(), p.Key())
	if err != nil {
		return entry.File{}, fmt.Errorf("Stat: %w", err)
	}
	return entry.FileFromRecord(p.Bucket(), rec), nil
}

// Partition splits entries by kind, keeping their relative order.
func Partition(entries []entry.Entry) (files []entry.File, dirs []entry.Directory, err error) {
	for i, e := range entries {
		switch e.Kind() {
		case entry.KindFile:
			f, _ := e.File()
			files = append(files, f)
		case entry.KindDirectory:
			d, _ := e.Directory()
			dirs = append(dirs, d)
		default:
			return nil, nil, fmt.Errorf("%w: entry %d has kind %s", ErrUnknownEntryKind, i, e.Kind())
		}
	}
	return files, dirs, nil
}

// Stats aggregates counts and the total size of files. Directories carry no size.
func Stats(files []entry.File, dirs []entry.Directory) dto.DirStats {
	st := dto.DirStats{NumDirs: len(dirs), NumFiles: len(files)}
	for _, f := range files {
		st.TotalFileSize += f.Size
	}
	return st
}
