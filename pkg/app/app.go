// Package app wires the object store, the browsing services and the HTTP
// server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sgaunet/s3peek/pkg/config"
	"github.com/sgaunet/s3peek/pkg/health"
	"github.com/sgaunet/s3peek/pkg/listing"
	"github.com/sgaunet/s3peek/pkg/metrics"
	"github.com/sgaunet/s3peek/pkg/objstore"
	"github.com/sgaunet/s3peek/pkg/preview"
	"github.com/sgaunet/s3peek/pkg/sampler"
	"github.com/sgaunet/s3peek/pkg/scheduler"
	"github.com/sgaunet/s3peek/pkg/views"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// App is the web browser of an object store.
type App struct {
	cfg       config.Config
	backend   objstore.Store
	store     objstore.Store
	listing   *listing.Service
	preview   *preview.Service
	sampler   *sampler.Sampler
	health    *health.StoreHealth
	scheduler *scheduler.Scheduler
	metrics   *metrics.Metrics
	router    *mux.Router
	views     *views.Views
	srv       *http.Server
	log       *slog.Logger
}

// NewApp connects the store selected by cfg and builds the App.
// The server is started by Start.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	backend, err := newStore(ctx, cfg.S3, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, err
	}
	return New(cfg, backend), nil
}

// New builds the App on top of backend. Every store call goes through the
// metrics decorator.
func New(cfg config.Config, backend objstore.Store) *App {
	cfg.SetDefaults()
	m := metrics.New()
	store := metrics.InstrumentStore(backend, metrics.NewStoreMetrics(m.Registry()))

	smp := sampler.New(store)
	smp.SetConcurrency(cfg.Preview.SampleConcurrency)
	h := health.NewStoreHealth(store, cfg.Health.Timeout)

	s := &App{
		cfg:       cfg,
		backend:   backend,
		store:     store,
		listing:   listing.NewService(store),
		preview:   preview.NewService(store),
		sampler:   smp,
		health:    h,
		scheduler: scheduler.NewScheduler(cfg.Health.Schedule, h),
		metrics:   m,
		router:    mux.NewRouter(),
		views:     views.NewViews(),
		srv:       &http.Server{Addr: cfg.Server.Listen, ReadHeaderTimeout: readHeaderTimeout},
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.initRouter()
	return s
}

// SetLogger sets the logger of the App and of its services.
func (s *App) SetLogger(log *slog.Logger) {
	s.log = log
	s.listing.SetLogger(log)
	s.preview.SetLogger(log)
	s.sampler.SetLogger(log)
	s.health.SetLogger(log)
	s.scheduler.SetLogger(log)
	if l, ok := s.backend.(interface{ SetLogger(*slog.Logger) }); ok {
		l.SetLogger(log)
	}
}

// Start runs the health scheduler and the web server in the background.
func (s *App) Start(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("Start: %w", err)
	}
	go s.startWebServer()
	return nil
}

func (s *App) startWebServer() {
	s.log.Info("listen", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("web server stopped", slog.String("error", err.Error()))
	}
}

// StopServer stops the scheduler and gracefully shuts the server down.
func (s *App) StopServer() {
	s.scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Error("error during shutdown", slog.String("error", err.Error()))
	}
}

// Router returns the HTTP handler of the App.
func (s *App) Router() http.Handler {
	return s.router
}
