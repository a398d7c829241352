// Package scheduler triggers analysis runs at fixed wall-clock times.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"committee-trade-bot-go/internal/config"
	"go.uber.org/zap"
)

// RunFunc is invoked at every firing time.
type RunFunc func(ctx context.Context)

// Scheduler fires a callback at the configured local times each day,
// by default 09:00 and 18:00. It runs the callback inline, so a slow run
// delays the next firing rather than overlapping it; runs triggered through
// the API are not serialized against scheduled ones.
type Scheduler struct {
	times    []clockTime
	location *time.Location
	run      RunFunc
	logger   *zap.Logger
}

type clockTime struct {
	hour   int
	minute int
}

// New creates a scheduler from the configuration. Run times must be "HH:MM".
func New(cfg *config.Scheduler, run RunFunc, logger *zap.Logger) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	times := make([]clockTime, 0, len(cfg.RunTimes))
	for _, raw := range cfg.RunTimes {
		var ct clockTime
		if _, err := fmt.Sscanf(raw, "%d:%d", &ct.hour, &ct.minute); err != nil {
			return nil, fmt.Errorf("invalid run time %q: %w", raw, err)
		}
		if ct.hour < 0 || ct.hour > 23 || ct.minute < 0 || ct.minute > 59 {
			return nil, fmt.Errorf("invalid run time %q", raw)
		}
		times = append(times, ct)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("no run times configured")
	}
	sort.Slice(times, func(i, j int) bool {
		if times[i].hour != times[j].hour {
			return times[i].hour < times[j].hour
		}
		return times[i].minute < times[j].minute
	})

	return &Scheduler{times: times, location: location, run: run, logger: logger}, nil
}

// NextRun returns the next firing time from now.
func (s *Scheduler) NextRun() time.Time {
	return s.nextAfter(time.Now().In(s.location))
}

// Run blocks until ctx is cancelled, firing the callback at each configured
// time.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Starting scheduler", zap.Int("run_times", len(s.times)))

	for {
		next := s.nextAfter(time.Now().In(s.location))
		s.logger.Info("Next scheduled run", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Stopping scheduler...")
			return
		case <-timer.C:
			s.logger.Info("Scheduled run starting")
			s.run(ctx)
		}
	}
}

// nextAfter returns the first firing time strictly after now.
func (s *Scheduler) nextAfter(now time.Time) time.Time {
	for _, ct := range s.times {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), ct.hour, ct.minute, 0, 0, s.location)
		if candidate.After(now) {
			return candidate
		}
	}
	// All of today's times have passed; first time tomorrow.
	first := s.times[0]
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first.hour, first.minute, 0, 0, s.location)
}
