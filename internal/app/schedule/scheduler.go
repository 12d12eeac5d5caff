// Package schedule runs the periodic full-sync pass.
package schedule

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"rentsync/internal/app/services"
)

// SyncScheduler triggers SyncAllCalendars on a cron spec and republishes
// the exported feeds after each pass.
type SyncScheduler struct {
	core    *services.Core
	logger  *slog.Logger
	cron    *cron.Cron
	spec    string
	publish bool
}

func NewSyncScheduler(core *services.Core, logger *slog.Logger, spec string, publishFeeds bool) *SyncScheduler {
	return &SyncScheduler{
		core:    core,
		logger:  logger,
		cron:    cron.New(),
		spec:    spec,
		publish: publishFeeds,
	}
}

// Start registers the job and launches the cron loop. The loop stops when
// ctx is cancelled.
func (s *SyncScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	s.logger.Info("sync scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the cron loop, waiting for a running pass to finish.
func (s *SyncScheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	results, err := s.core.SyncAllCalendars(ctx, nil)
	if err != nil {
		s.logger.Error("scheduled sync pass failed", "err", err)
		return
	}
	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}
	s.logger.Info("scheduled sync pass finished", "feeds", len(results), "succeeded", succeeded)

	if s.publish {
		if err := s.core.PublishAllCalendars(ctx); err != nil {
			s.logger.Error("feed publish pass failed", "err", err)
		}
	}
}
