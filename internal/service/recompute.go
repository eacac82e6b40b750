package service

import (
	"context"
	"fmt"
	"time"

	"estate-metrics/config"
	"estate-metrics/internal/model"
	"estate-metrics/internal/repository"
	"estate-metrics/pkg/logger"
	"estate-metrics/pkg/utils"
)

// MetricsService runs the batch metrics recompute over the listing table.
type MetricsService struct {
	cfg         *config.Config
	log         *logger.Logger
	listingRepo repository.ListingRepository
	metricsRepo repository.MetricsRepository
	uow         repository.UnitOfWork
	aggregator  *PeerAggregator
	roi         *ROICalculator
	now         func() time.Time
}

func NewMetricsService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	aggregator *PeerAggregator,
	roi *ROICalculator,
) *MetricsService {
	return &MetricsService{
		cfg:         cfg,
		log:         log,
		listingRepo: repo.ListingRepo,
		metricsRepo: repo.MetricsRepo,
		uow:         repo.UnitOfWork,
		aggregator:  aggregator,
		roi:         roi,
		now:         time.Now,
	}
}

type RecomputeOptions struct {
	// Force recomputes every listing, not just the ones missing a metrics row.
	Force bool
	// Limit caps the number of listings processed; <= 0 means all.
	Limit int
	// BatchSize overrides the configured chunk size when > 0.
	BatchSize int
}

type RecomputeResult struct {
	Processed int
	Created   int
	Updated   int
	Batches   int
}

// Recompute walks the candidate set in chunks. Each chunk builds its peer
// snapshot, assembles metrics rows, and persists them in one transaction, so
// a failure loses at most the current chunk.
func (s *MetricsService) Recompute(ctx context.Context, opts RecomputeOptions) (*RecomputeResult, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = s.cfg.Metrics.BatchSize
	}
	if batchSize <= 0 {
		batchSize = 1000
	}

	result := &RecomputeResult{}
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		limit := batchSize
		if opts.Limit > 0 {
			remaining := opts.Limit - result.Processed
			if remaining <= 0 {
				break
			}
			if remaining < limit {
				limit = remaining
			}
		}

		batch, err := s.listingRepo.FindBatch(ctx, model.ListingBatchParam{
			MissingMetricsOnly: !opts.Force,
			Offset:             offset,
			Limit:              limit,
		})
		if err != nil {
			return result, fmt.Errorf("load batch at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}

		created, updated, err := s.recomputeBatch(ctx, batch)
		if err != nil {
			return result, fmt.Errorf("batch %d (offset %d): %w", result.Batches+1, offset, err)
		}

		result.Processed += len(batch)
		result.Created += created
		result.Updated += updated
		result.Batches++

		// In incremental mode processed listings drop out of the candidate
		// set, so the next chunk starts at zero again. Force mode pages.
		if opts.Force {
			offset += len(batch)
		}
		if len(batch) < limit {
			break
		}
	}

	s.log.InfoContext(ctx, "Metrics recompute finished",
		logger.IntField("processed", result.Processed),
		logger.IntField("created", result.Created),
		logger.IntField("updated", result.Updated),
		logger.IntField("batches", result.Batches),
	)
	return result, nil
}

func (s *MetricsService) recomputeBatch(ctx context.Context, batch []*model.Listing) (created, updated int, err error) {
	snap, err := s.aggregator.BuildSnapshot(ctx, batch)
	if err != nil {
		return 0, 0, err
	}

	listingIDs := make([]uint, 0, len(batch))
	for _, listing := range batch {
		listingIDs = append(listingIDs, listing.ID)
	}
	existing, err := s.metricsRepo.ExistingListingIDs(ctx, listingIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("load existing metrics: %w", err)
	}

	now := s.now()
	var createSet, updateSet []*model.ListingMetrics
	for _, listing := range batch {
		row := s.assembleMetrics(listing, snap)
		if metricsID, ok := existing[listing.ID]; ok {
			row.ID = metricsID
			updateSet = append(updateSet, row)
		} else {
			createSet = append(createSet, row)
		}

		// The listing's own computed columns mirror the metrics row.
		listing.ROI = row.ROI
		listing.DaysOnMarket = daysOnMarket(listing, now)
	}

	err = s.uow.Run(func(txOpts ...utils.DBOption) error {
		if err := s.metricsRepo.CreateBulk(ctx, createSet, txOpts...); err != nil {
			return fmt.Errorf("create metrics: %w", err)
		}
		for _, row := range updateSet {
			if err := s.metricsRepo.UpdateFields(ctx, row, model.MetricsUpdateFields, txOpts...); err != nil {
				return fmt.Errorf("update metrics for listing %d: %w", row.ListingID, err)
			}
		}
		for _, listing := range batch {
			if err := s.listingRepo.UpdateFields(ctx, listing, model.ListingComputedFields, txOpts...); err != nil {
				return fmt.Errorf("update listing %d computed columns: %w", listing.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return len(createSet), len(updateSet), nil
}

func (s *MetricsService) assembleMetrics(listing *model.Listing, snap *Snapshot) *model.ListingMetrics {
	row := &model.ListingMetrics{ListingID: listing.ID}
	row.ROI = s.roi.ComputeFromSnapshot(listing, snap)
	row.PricePerSqft = pricePerSqft(listing)

	if listing.BuildingID == nil {
		return row
	}
	buildingID := *listing.BuildingID

	if stats, ok := snap.BuildingStats(buildingID); ok {
		row.BuildingAvgPrice = stats.AvgSalePrice
		row.BuildingAvgROI = stats.AvgROI
		row.BuildingAvgExposureDays = stats.AvgExposureDays
		row.BuildingSaleCount = stats.SaleCount
		row.BuildingRentCount = stats.RentCount
	}

	if listing.Bedrooms != nil {
		if stats, ok := snap.BedroomStats(buildingID, *listing.Bedrooms); ok {
			row.BuildingAvgPriceByBedrooms = stats.AvgSalePrice
			row.AvgRentByBedrooms = stats.AvgRent
			row.BuildingSaleCountByBedrooms = stats.SaleCount
			row.BuildingRentCountByBedrooms = stats.RentCount
		}
	}

	if areaName := snap.BuildingArea(buildingID); areaName != "" {
		row.AreaAvgDaysOnMarket = snap.AreaAvgDaysOnMarket(areaName)
	}
	return row
}

func pricePerSqft(listing *model.Listing) float64 {
	if listing.Price == nil || *listing.Price <= 0 {
		return 0
	}
	sqft := 0.0
	switch {
	case listing.AreaSqft != nil && *listing.AreaSqft > 0:
		sqft = *listing.AreaSqft
	case listing.AreaSqm != nil && *listing.AreaSqm > 0:
		sqft = utils.SqmToSqft(*listing.AreaSqm)
	}
	if sqft <= 0 {
		return 0
	}
	return utils.Round2(*listing.Price / sqft)
}

func daysOnMarket(listing *model.Listing, now time.Time) *int {
	if listing.AddedOn == nil {
		return nil
	}
	days := utils.DaysSince(*listing.AddedOn, now)
	if days < 0 {
		days = 0
	}
	return &days
}
