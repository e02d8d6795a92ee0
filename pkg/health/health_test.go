package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sgaunet/s3peek/pkg/health"
	"github.com/sgaunet/s3peek/pkg/objstore/memstore"
)

func TestStoreHealthTransitions(t *testing.T) {
	store := memstore.New()
	store.Put("a", "k", []byte("x"))
	store.Put("b", "k", []byte("y"))
	h := health.NewStoreHealth(store, 0)

	info := h.GetHealthInfo()
	assert.Equal(t, health.StatusUnknown, info.Status)
	assert.False(t, info.IsConnected)

	store.Err = errors.New("connection refused")
	h.Check(context.Background())
	h.Check(context.Background())
	info = h.GetHealthInfo()
	assert.Equal(t, health.StatusUnhealthy, info.Status)
	assert.Equal(t, 2, info.ConsecutiveFailures)
	assert.Contains(t, info.LastError, "connection refused")
	assert.False(t, h.IsHealthy())

	store.Err = nil
	h.Check(context.Background())
	info = h.GetHealthInfo()
	assert.Equal(t, health.StatusHealthy, info.Status)
	assert.Zero(t, info.ConsecutiveFailures)
	assert.Empty(t, info.LastError)
	assert.Equal(t, 2, info.Buckets)
	assert.True(t, info.IsConnected)
	assert.False(t, info.LastCheck.IsZero())
}
