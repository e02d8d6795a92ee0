package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sgaunet/s3peek/pkg/entry"
	"github.com/sgaunet/s3peek/pkg/objstore"
	"github.com/sgaunet/s3peek/pkg/preview"
	"github.com/sgaunet/s3peek/pkg/s3path"
	"github.com/sgaunet/s3peek/pkg/views"
)

// IndexBuckets renders the list of buckets.
func (s *App) IndexBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.store.ListBuckets(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, func(ctx context.Context, w io.Writer) error {
		return s.views.RenderBuckets(ctx, w, buckets)
	})
}

// RedirectS3 turns a pasted s3://bucket/key URL into the browsing URL.
func (s *App) RedirectS3(w http.ResponseWriter, r *http.Request) {
	target := &url.URL{Path: "/" + mux.Vars(r)["path"]}
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// Browse lists a prefix when the path ends with a separator and previews the
// object otherwise.
func (s *App) Browse(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	if !strings.Contains(path, s3path.Separator) {
		target := &url.URL{Path: "/" + path + s3path.Separator}
		http.Redirect(w, r, target.String(), http.StatusFound)
		return
	}
	if strings.HasSuffix(path, s3path.Separator) {
		s.listPrefix(w, r, path)
		return
	}
	s.previewObject(w, r, path, views.ModeHead)
}

// HeadHandler renders the first lines of an object.
func (s *App) HeadHandler(w http.ResponseWriter, r *http.Request) {
	s.previewObject(w, r, mux.Vars(r)["path"], views.ModeLines)
}

// SampleHandler renders random lines of an object.
func (s *App) SampleHandler(w http.ResponseWriter, r *http.Request) {
	s.previewObject(w, r, mux.Vars(r)["path"], views.ModeSample)
}

func (s *App) listPrefix(w http.ResponseWriter, r *http.Request, path string) {
	res, err := s.listing.List(r.Context(), path)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	data := views.ListingData{
		Path:  res.Path,
		Dirs:  res.Dirs,
		Files: res.Files,
		Stats: res.Stats,
	}
	s.render(w, r, http.StatusOK, func(ctx context.Context, w io.Writer) error {
		return s.views.RenderListing(ctx, w, data)
	})
}

func (s *App) previewObject(w http.ResponseWriter, r *http.Request, path, mode string) {
	ctx := r.Context()
	f, err := s.listing.Stat(ctx, path)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var content string
	switch mode {
	case views.ModeLines:
		var lines []string
		lines, err = s.preview.Head(ctx, f.Bucket, f.Key, s.cfg.Preview.HeadLines, s.cfg.Preview.HeadBytes, s.cfg.Preview.ChunkSize, preview.DefaultLineSeparator)
		content = strings.Join(lines, "\n")
	case views.ModeSample:
		content, err = s.sample(r, f)
	default:
		content, err = s.preview.Read(ctx, f.Bucket, f.Key, s.cfg.Preview.MaxBytes, s.cfg.Preview.ChunkSize)
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := views.PreviewData{
		File:      f,
		Mode:      mode,
		Content:   content,
		ShownSize: len(content),
	}
	s.render(w, r, http.StatusOK, func(ctx context.Context, w io.Writer) error {
		return s.views.RenderPreview(ctx, w, data)
	})
}

func (s *App) sample(r *http.Request, f entry.File) (string, error) {
	if f.Size == 0 {
		return "", nil
	}
	lines, err := s.sampler.Sample(r.Context(), f.Bucket, f.Key, f.Size, s.cfg.Preview.SampleCount, s.cfg.Preview.SampleRadius)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return strings.Join(lines, "\n"), nil
}

// DownloadFile streams an object to the client in chunks.
func (s *App) DownloadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := s3path.Normalize(mux.Vars(r)["path"])
	p, err := s3path.Parse(raw)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if p.IsPrefix() {
		s.renderError(w, r, &objstore.NotFoundError{Bucket: p.Bucket(), Key: p.Key()})
		return
	}
	exists, err := objstore.Exists(ctx, s.store, raw)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if !exists {
		s.renderError(w, r, &objstore.NotFoundError{Bucket: p.Bucket(), Key: p.Key()})
		return
	}

	started := false
	start := func() {
		started = true
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": p.Name()}))
		w.WriteHeader(http.StatusOK)
	}
	flusher, _ := w.(http.Flusher)
	for chunk, err := range objstore.ReadSequential(ctx, s.store, p.Bucket(), p.Key(), s.cfg.Preview.StreamChunkSize) {
		if err != nil {
			if !started {
				s.renderError(w, r, err)
				return
			}
			s.log.Error("DownloadFile: stream interrupted",
				slog.String("path", p.String()),
				slog.String("error", err.Error()))
			return
		}
		if !started {
			start()
		}
		if _, err := w.Write(chunk); err != nil {
			s.log.Debug("DownloadFile: client gone", slog.String("error", err.Error()))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if !started {
		start()
	}
}

// HealthHandler reports the last store check as JSON. It answers 503 until
// the store has answered a check.
func (s *App) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	info := s.health.GetHealthInfo()
	status := http.StatusOK
	if !s.health.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(info); err != nil {
		s.log.Error("HealthHandler: encode", slog.String("error", err.Error()))
	}
}

// render writes the page produced by page with status. The page is rendered
// in memory first and a rendering failure is answered with a 500.
func (s *App) render(w http.ResponseWriter, r *http.Request, status int, page func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := page(r.Context(), &buf); err != nil {
		s.log.Error("Failed to render page", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Debug("render: client gone", slog.String("error", err.Error()))
	}
}

func (s *App) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("url", r.URL.Path), slog.String("error", err.Error()))
	} else {
		s.log.Debug("request failed", slog.String("url", r.URL.Path), slog.String("error", err.Error()))
	}
	msg := err.Error()
	s.render(w, r, status, func(ctx context.Context, w io.Writer) error {
		return s.views.RenderError(ctx, w, status, msg)
	})
}

// statusFor maps an error to its HTTP status: unparseable paths and missing
// objects are 404, everything else is 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, s3path.ErrInvalidPath), errors.Is(err, objstore.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
