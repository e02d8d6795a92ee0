package views

import (
	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/sgaunet/s3peek/pkg/dto"
	"github.com/sgaunet/s3peek/pkg/entry"
	"github.com/sgaunet/s3peek/pkg/s3path"
)

// Preview modes.
const (
	ModeHead   = "head"
	ModeLines  = "lines"
	ModeSample = "sample"
)

// ListingData is the data structure used to render a prefix listing.
type ListingData struct {
	Path  s3path.Path
	Dirs  []entry.Directory
	Files []entry.File
	Stats dto.DirStats
}

// PreviewData is the data structure used to render an object preview.
type PreviewData struct {
	File      entry.File
	Mode      string
	Content   string
	ShownSize int
}

// browseURL is the link to a display path ("bucket/dir/key").
func browseURL(displayPath string) templ.SafeURL {
	return templ.URL(linkPath(displayPath))
}

// actionURL is the link to a display path under a route prefix such as
// "/download".
func actionURL(action, displayPath string) templ.SafeURL {
	return templ.URL(action + linkPath(displayPath))
}

func parentURL(p s3path.Path) templ.SafeURL {
	if p.Key() == "" {
		return templ.URL("/")
	}
	return browseURL(p.Parent().Display())
}

func fileParentURL(f entry.File) templ.SafeURL {
	p, err := s3path.New(f.Bucket, f.Key)
	if err != nil {
		return templ.URL("/")
	}
	return parentURL(p)
}

func modeLabel(mode string) string {
	switch mode {
	case ModeLines:
		return "first lines"
	case ModeSample:
		return "random lines"
	default:
		return "first bytes"
	}
}

func humanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
