package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sgaunet/s3peek/pkg/config"
	"github.com/sgaunet/s3peek/pkg/miniosvc"
	"github.com/sgaunet/s3peek/pkg/objstore"
	"github.com/sgaunet/s3peek/pkg/s3svc"
)

// newStore returns the backend selected by cfg.Provider.
func newStore(ctx context.Context, cfg config.S3Config, log *slog.Logger) (objstore.Store, error) {
	switch cfg.Provider {
	case config.ProviderMinio:
		client, err := miniosvc.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("newStore: %w", err)
		}
		svc := miniosvc.NewMinioSvc(cfg, client)
		svc.SetLogger(log)
		return svc, nil
	case config.ProviderAWS, "":
		client, err := s3svc.NewClient(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("newStore: %w", err)
		}
		svc := s3svc.NewS3Svc(cfg, client)
		svc.SetLogger(log)
		return svc, nil
	default:
		return nil, fmt.Errorf("newStore: %w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}
