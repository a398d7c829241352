package scheduler

import (
	"context"
	"testing"
	"time"

	"committee-trade-bot-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T, runTimes []string) *Scheduler {
	t.Helper()
	s, err := New(&config.Scheduler{RunTimes: runTimes, Timezone: "UTC"}, func(context.Context) {}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestNextAfter_SameDay(t *testing.T) {
	s := newTestScheduler(t, []string{"09:00", "18:00"})
	now := time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)

	next := s.nextAfter(now)

	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), next)
}

func TestNextAfter_BeforeFirstRun(t *testing.T) {
	s := newTestScheduler(t, []string{"09:00", "18:00"})
	now := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)

	next := s.nextAfter(now)

	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), next)
}

func TestNextAfter_RollsToNextDay(t *testing.T) {
	s := newTestScheduler(t, []string{"09:00", "18:00"})
	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)

	next := s.nextAfter(now)

	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), next)
}

func TestNextAfter_ExactFiringTimeSkipped(t *testing.T) {
	// A firing time equal to now belongs to the run in progress.
	s := newTestScheduler(t, []string{"09:00", "18:00"})
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	next := s.nextAfter(now)

	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), next)
}

func TestNextAfter_UnsortedConfigTimes(t *testing.T) {
	s := newTestScheduler(t, []string{"18:00", "09:00"})
	now := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)

	next := s.nextAfter(now)

	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), next)
}

func TestNew_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Scheduler
	}{
		{"bad timezone", config.Scheduler{RunTimes: []string{"09:00"}, Timezone: "Not/AZone"}},
		{"bad time format", config.Scheduler{RunTimes: []string{"nine"}, Timezone: "UTC"}},
		{"hour out of range", config.Scheduler{RunTimes: []string{"25:00"}, Timezone: "UTC"}},
		{"no run times", config.Scheduler{Timezone: "UTC"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(&tc.cfg, func(context.Context) {}, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestNextRun_IsInTheFuture(t *testing.T) {
	s := newTestScheduler(t, []string{"09:00", "18:00"})

	next := s.NextRun()

	assert.True(t, next.After(time.Now()))
	assert.True(t, next.Sub(time.Now()) <= 24*time.Hour)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := newTestScheduler(t, []string{"09:00"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}
