// Package views renders the HTML pages of the browser and serves its assets.
package views

//go:generate go tool templ generate

import (
	"embed"
	"net/http"
)

//go:embed static
var staticCSS embed.FS

//go:embed static/favicon.svg
var faviconFS []byte

// Views holds the handlers of the embedded assets.
type Views struct {
	staticHandler http.Handler
}

// NewViews creates the views.
func NewViews() *Views {
	var staticFS = http.FS(staticCSS)
	fsStatic := http.FileServer(staticFS)
	return &Views{
		staticHandler: fsStatic,
	}
}

// GetStaticHandler returns the static handler (for CSS and images)
func (v *Views) GetStaticHandler() http.Handler {
	return v.staticHandler
}
