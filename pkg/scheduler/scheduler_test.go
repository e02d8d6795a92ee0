package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/s3peek/pkg/scheduler"
)

type countingChecker struct {
	n atomic.Int32
}

func (c *countingChecker) Check(context.Context) {
	c.n.Add(1)
}

func TestSchedulerRunsCheck(t *testing.T) {
	c := &countingChecker{}
	s := scheduler.NewScheduler("@every 1s", c)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, int32(1), c.n.Load(), "first check runs on start")
	assert.Eventually(t, func() bool { return c.n.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	c := &countingChecker{}
	s := scheduler.NewScheduler("not a schedule", c)

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.Zero(t, c.n.Load())
}
