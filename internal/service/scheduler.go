package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"estate-metrics/config"
	"estate-metrics/pkg/logger"
	"estate-metrics/pkg/telegram"
)

// SchedulerService runs the periodic enrichment pass: link new listings to
// buildings, retry area resolution, then recompute missing metrics.
type SchedulerService struct {
	cfg      *config.Config
	log      *logger.Logger
	linker   *LinkerService
	metrics  *MetricsService
	notifier *telegram.Notifier

	cron    *cron.Cron
	running sync.Mutex
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, linker *LinkerService, metrics *MetricsService, notifier *telegram.Notifier) *SchedulerService {
	return &SchedulerService{
		cfg:      cfg,
		log:      log,
		linker:   linker,
		metrics:  metrics,
		notifier: notifier,
	}
}

func (s *SchedulerService) Start() error {
	if !s.cfg.Scheduler.Enabled {
		s.log.Info("Scheduler disabled")
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.cfg.Scheduler.EnrichmentSpec, func() {
		if err := s.RunEnrichment(context.Background()); err != nil {
			s.log.Error("Scheduled enrichment failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule enrichment: %w", err)
	}

	s.cron.Start()
	s.log.Info("Scheduler started",
		logger.StringField("enrichment_spec", s.cfg.Scheduler.EnrichmentSpec),
	)
	return nil
}

func (s *SchedulerService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunEnrichment executes one enrichment cycle. Overlapping runs are skipped
// rather than queued; the next tick picks up whatever is left.
func (s *SchedulerService) RunEnrichment(ctx context.Context) error {
	if !s.running.TryLock() {
		s.log.Warn("Enrichment run still active, skipping this tick")
		return nil
	}
	defer s.running.Unlock()

	s.log.InfoContext(ctx, "Enrichment run starting")

	linked, err := s.linker.LinkUnlinked(ctx, 0)
	if err != nil {
		return fmt.Errorf("link buildings: %w", err)
	}

	areasUpdated, err := s.linker.RefreshAreas(ctx)
	if err != nil {
		return fmt.Errorf("refresh areas: %w", err)
	}

	recomputed, err := s.metrics.Recompute(ctx, RecomputeOptions{})
	if err != nil {
		return fmt.Errorf("recompute metrics: %w", err)
	}

	s.log.InfoContext(ctx, "Enrichment run finished",
		logger.IntField("linked", linked),
		logger.IntField("areas_updated", areasUpdated),
		logger.IntField("metrics_processed", recomputed.Processed),
	)

	if s.notifier.Enabled() {
		s.notifier.Send(fmt.Sprintf(
			"Enrichment run finished\nLinked: %d\nAreas updated: %d\nMetrics: %d processed (%d created, %d updated)",
			linked, areasUpdated, recomputed.Processed, recomputed.Created, recomputed.Updated,
		))
	}
	return nil
}
