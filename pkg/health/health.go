// Package health tracks the reachability of the object store.
package health

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sgaunet/s3peek/pkg/objstore"
)

// Status represents the current health status.
type Status string

const (
	// StatusHealthy indicates the store answered the last check.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the last check failed.
	StatusUnhealthy Status = "unhealthy"
	// StatusUnknown indicates no check ran yet.
	StatusUnknown Status = "unknown"
)

// DefaultTimeout bounds a single check.
const DefaultTimeout = 5 * time.Second

// StoreHealth tracks object store connectivity health.
type StoreHealth struct {
	mu                  sync.RWMutex
	store               objstore.Store
	status              Status
	lastCheck           time.Time
	lastError           error
	consecutiveFailures int
	buckets             int
	timeout             time.Duration
	logger              *slog.Logger
}

// Info contains current health information.
type Info struct {
	Status              Status    `json:"status"`
	LastCheck           time.Time `json:"last_check"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Buckets             int       `json:"buckets"`
	IsConnected         bool      `json:"is_connected"`
}

// NewStoreHealth creates a new store health monitor.
// A timeout lower than or equal to zero falls back to DefaultTimeout.
func NewStoreHealth(store objstore.Store, timeout time.Duration) *StoreHealth {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StoreHealth{
		store:   store,
		status:  StatusUnknown,
		timeout: timeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger
func (h *StoreHealth) SetLogger(log *slog.Logger) {
	h.logger = log
}

// GetHealthInfo returns current health information.
func (h *StoreHealth) GetHealthInfo() Info {
	h.mu.RLock()
	defer h.mu.RUnlock()

	errorMsg := ""
	if h.lastError != nil {
		errorMsg = h.lastError.Error()
	}

	return Info{
		Status:              h.status,
		LastCheck:           h.lastCheck,
		LastError:           errorMsg,
		ConsecutiveFailures: h.consecutiveFailures,
		Buckets:             h.buckets,
		IsConnected:         h.status == StatusHealthy,
	}
}

// IsHealthy returns true if the store answered the last check.
func (h *StoreHealth) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status == StatusHealthy
}

// Check tests the store by listing its buckets.
func (h *StoreHealth) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	buckets, err := h.store.ListBuckets(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastCheck = time.Now()
	if err != nil {
		h.status = StatusUnhealthy
		h.lastError = err
		h.consecutiveFailures++

		h.logger.Debug("Store health check failed",
			slog.String("error", err.Error()),
			slog.Int("consecutive_failures", h.consecutiveFailures))
		return
	}

	wasUnhealthy := h.status == StatusUnhealthy
	h.status = StatusHealthy
	h.lastError = nil
	h.consecutiveFailures = 0
	h.buckets = len(buckets)

	if wasUnhealthy {
		h.logger.Info("Store health restored")
	}
}
