package service

import (
	"estate-metrics/config"
	"estate-metrics/internal/area"
	"estate-metrics/internal/ingest"
	"estate-metrics/internal/repository"
	"estate-metrics/pkg/cache"
	"estate-metrics/pkg/logger"
	"estate-metrics/pkg/telegram"
)

type Service struct {
	Importer   *ImportService
	Linker     *LinkerService
	Metrics    *MetricsService
	Query      *QueryService
	Scheduler  *SchedulerService
	Aggregator *PeerAggregator
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	notifier *telegram.Notifier,
) *Service {
	aggregator := NewPeerAggregator(log, repo.ListingRepo, inmemoryCache, cfg.Cache.DefaultExpiration)
	roi := NewROICalculator(repo.ListingRepo)
	linker := NewLinkerService(log, area.NewDefaultResolver(), repo.ListingRepo, repo.BuildingRepo)
	metrics := NewMetricsService(cfg, log, repo, aggregator, roi)
	importer := NewImportService(cfg, log, repo, ingest.NewFetcher(cfg.Import.FetchTimeout))
	query := NewQueryService(repo.ListingRepo, aggregator)
	scheduler := NewSchedulerService(cfg, log, linker, metrics, notifier)

	return &Service{
		Importer:   importer,
		Linker:     linker,
		Metrics:    metrics,
		Query:      query,
		Scheduler:  scheduler,
		Aggregator: aggregator,
	}
}
