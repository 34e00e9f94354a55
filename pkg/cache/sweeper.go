package cache

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Sweeper removes expired entries on a cron schedule.
type Sweeper struct {
	cache    *Cache
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

// NewSweeper creates a sweeper for cache. schedule is a cron expression
// such as "@every 10m".
func NewSweeper(c *Cache, schedule string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cache:    c,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger.With("component", "cache.sweeper"),
	}
}

// Start schedules the sweep. It returns an error for an invalid schedule.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("invalid cache sweep schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("Cache sweeper started", "schedule", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Cache sweeper stopped")
}

func (s *Sweeper) run() {
	s.sweep()
}

func (s *Sweeper) sweep() int {
	removed := s.cache.Sweep()
	if removed > 0 {
		s.logger.Debug("Swept expired cache entries", "removed", removed, "remaining", s.cache.Len())
	}
	return removed
}
