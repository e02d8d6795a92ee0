package views

import "net/http"

// FaviconHandler handles the favicon.ico request
func FaviconHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=7776000")
	_, _ = w.Write(faviconFS)
}
