package views

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// relativePeriods are tried from the largest unit down.
var relativePeriods = []struct {
	unit     time.Duration
	singular string
	plural   string
}{
	{year, "1 year ago", "%d years ago"},
	{month, "1 month ago", "%d months ago"},
	{week, "1 week ago", "%d weeks ago"},
	{day, "yesterday", "%d days ago"},
	{time.Hour, "1 hour ago", "%d hours ago"},
	{time.Minute, "1 minute ago", "%d minutes ago"},
}

// formatRelativeTime renders t relative to now ("3 days ago").
func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	if d < 0 {
		return "in the future"
	}
	for _, p := range relativePeriods {
		n := int(d / p.unit)
		switch {
		case n == 1:
			return p.singular
		case n > 1:
			return fmt.Sprintf(p.plural, n)
		}
	}
	return "just now"
}

// formatDateTime formats a time.Time to a readable date and time string.
func formatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04")
}

// getFileTypeLabel returns a human-readable label for file type.
func getFileTypeLabel(filename string) string {
	ext := strings.ToLower(filename)
	lastDot := strings.LastIndex(ext, ".")
	if lastDot == -1 {
		return "File"
	}
	ext = ext[lastDot+1:]
	return strings.ToUpper(ext)
}

// linkPath escapes every segment of a display path ("bucket/dir/key") for
// use in an href. Trailing slashes are kept.
func linkPath(displayPath string) string {
	segments := strings.Split(displayPath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segments, "/")
}
