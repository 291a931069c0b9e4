package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/watchdog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	calls int32
}

func (c *countingChecker) CheckAndRespawn(context.Context) (watchdog.Status, error) {
	atomic.AddInt32(&c.calls, 1)
	return watchdog.StatusUp, nil
}

func TestService_StartRunsCheck(t *testing.T) {
	checker := &countingChecker{}
	svc := NewService(&config.Config{WatchdogSchedule: "* * * * * *"}, checker)

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&checker.calls) > 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestService_StartRejectsBadSchedule(t *testing.T) {
	svc := NewService(&config.Config{WatchdogSchedule: "every minute"}, &countingChecker{})
	assert.Error(t, svc.Start(context.Background()))
}
