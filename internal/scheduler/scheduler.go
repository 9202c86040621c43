package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/internal/pipeline"
	"jobscout/pkg/models"
)

// Scheduler triggers periodic quick-mode re-scans for the configured
// user. Disabled unless the configuration turns it on.
type Scheduler struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	profiles *pipeline.ProfileCache
	cron     *cron.Cron
	logger   logging.Logger
}

// New creates a scheduler around the pipeline
func New(cfg *config.Config, pipe *pipeline.Pipeline, profiles *pipeline.ProfileCache) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		pipe:     pipe,
		profiles: profiles,
		logger:   logging.GetGlobalLogger(),
	}
}

// Start registers the cron entry and begins the loop. A no-op when the
// scheduler is disabled.
func (s *Scheduler) Start() error {
	if !s.cfg.Scheduler.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	interval := s.cfg.Scheduler.IntervalHours
	if interval <= 0 {
		interval = 6
	}

	s.cron = cron.New()
	spec := fmt.Sprintf("@every %dh", interval)
	if _, err := s.cron.AddFunc(spec, s.runQuickScan); err != nil {
		return fmt.Errorf("failed to schedule re-scan: %w", err)
	}
	s.cron.Start()

	s.logger.Info("Scheduler started", map[string]interface{}{
		"interval": spec,
		"user":     s.cfg.Scheduler.UserID,
	})
	return nil
}

// Stop halts the cron loop, waiting for a running scan to finish
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// runQuickScan executes one quick-mode discovery run for the
// configured user
func (s *Scheduler) runQuickScan() {
	userID := s.cfg.Scheduler.UserID
	profile, ok := s.profiles.Get(userID)
	if !ok {
		s.logger.Warn("Skipping scheduled scan, no profile seen for user", map[string]interface{}{
			"user": userID,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info("Starting scheduled quick scan", map[string]interface{}{
		"user": userID,
	})

	plan, err := s.pipe.Discover(ctx, profile, models.ModeQuick, pipeline.NopSink)
	if err != nil {
		s.logger.Error("Scheduled scan failed", map[string]interface{}{
			"user":  userID,
			"error": err.Error(),
		})
		return
	}

	s.logger.Info("Scheduled scan finished", map[string]interface{}{
		"user":   userID,
		"status": string(plan.Status),
		"added":  plan.NewJobsAdded,
	})
}
