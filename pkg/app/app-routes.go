package app

import "github.com/sgaunet/s3peek/pkg/views"

// initRouter initializes the router of the App.
// Paths are not cleaned: object keys may legitimately hold "//" or "..".
func (s *App) initRouter() {
	s.router.SkipClean(true)
	s.router.Use(s.metrics.Middleware)

	s.router.PathPrefix("/static/").Handler(s.views.GetStaticHandler())
	s.router.HandleFunc("/favicon.ico", views.FaviconHandler)
	s.router.HandleFunc("/health", s.HealthHandler)
	s.router.Handle("/metrics", s.metrics.Handler())
	s.router.HandleFunc("/", s.IndexBuckets)
	s.router.HandleFunc("/s3://{path:.*}", s.RedirectS3)
	s.router.HandleFunc("/download/{path:.+}", s.DownloadFile)
	s.router.HandleFunc("/head/{path:.+}", s.HeadHandler)
	s.router.HandleFunc("/sample/{path:.+}", s.SampleHandler)
	s.router.HandleFunc("/{path:.+}", s.Browse)
	s.srv.Handler = s.router
}
