package service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/linecardbot/line-card-bot/internal/biz/repo"
)

// Sweeper periodically removes expired triggers from the registry
type Sweeper struct {
	triggers repo.TriggerRepo
	window   time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewSweeper creates a new sweeper. A zero interval disables it.
func NewSweeper(triggers repo.TriggerRepo, window, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		triggers: triggers,
		window:   window,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start schedules the sweep
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.interval <= 0 {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()

	s.cron = c
	s.running = true
	s.logger.Info("[SWEEP] Started", "interval", s.interval, "window", s.window)
	return nil
}

// Stop stops the schedule and waits for a running sweep
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("[SWEEP] Stopped")
}

// RunOnce sweeps expired triggers and returns how many were removed
func (s *Sweeper) RunOnce() int {
	removed := s.triggers.Sweep(s.now(), s.window)
	if removed > 0 {
		s.logger.Info("[SWEEP] Removed expired triggers", "count", removed, "remaining", s.triggers.Len())
	} else {
		s.logger.Debug("[SWEEP] Nothing to remove", "remaining", s.triggers.Len())
	}
	return removed
}
