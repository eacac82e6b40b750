package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-metrics/config"
	"estate-metrics/internal/model"
	"estate-metrics/internal/repository"
	"estate-metrics/pkg/logger"
)

func newTestMetricsService(store *fakeStore, batchSize int) *MetricsService {
	cfg := &config.Config{Metrics: config.Metrics{BatchSize: batchSize}}
	log := logger.NewNop()
	repo := &repository.Repository{
		ListingRepo:  store,
		BuildingRepo: store,
		MetricsRepo:  &fakeMetricsRepo{store: store},
		UnitOfWork:   &fakeUnitOfWork{},
	}
	aggregator := NewPeerAggregator(log, store, nil, 0)
	return NewMetricsService(cfg, log, repo, aggregator, NewROICalculator(store))
}

func seedMarinaBuilding(store *fakeStore) (*model.Building, *model.Listing) {
	building := store.addBuilding(&model.Building{
		Name: "Marina Heights Tower", Address: "Marina Heights Tower, Dubai Marina",
		Area: strPtr("Dubai Marina"),
	})
	sale := store.addListing(&model.Listing{
		ExternalID: "s1", TransactionKind: model.TransactionSell,
		Price: floatPtr(1_000_000), Bedrooms: intPtr(2),
		AreaSqft: floatPtr(1250), BuildingID: &building.ID,
	})
	store.addListing(&model.Listing{
		ExternalID: "r1", TransactionKind: model.TransactionRent,
		Price: floatPtr(5000), Bedrooms: intPtr(2), BuildingID: &building.ID,
	})
	store.addListing(&model.Listing{
		ExternalID: "r2", TransactionKind: model.TransactionRent,
		Price: floatPtr(7000), Bedrooms: intPtr(2), BuildingID: &building.ID,
	})
	return building, sale
}

func TestRecompute_EndToEnd(t *testing.T) {
	store := newFakeStore()
	_, sale := seedMarinaBuilding(store)
	svc := newTestMetricsService(store, 100)

	result, err := svc.Recompute(context.Background(), RecomputeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Len(t, store.metrics, 3)

	row := store.metricsByListingID(sale.ID)
	require.NotNil(t, row)
	require.NotNil(t, row.ROI)
	assert.Equal(t, 7.2, *row.ROI)
	assert.Equal(t, 800.0, row.PricePerSqft) // 1,000,000 / 1250
	assert.Equal(t, 1_000_000.0, row.BuildingAvgPrice)
	assert.Equal(t, 1, row.BuildingSaleCount)
	assert.Equal(t, 2, row.BuildingRentCount)
	assert.Equal(t, 6000.0, row.AvgRentByBedrooms)
	assert.Equal(t, 1, row.BuildingSaleCountByBedrooms)
	assert.Equal(t, 2, row.BuildingRentCountByBedrooms)
	assert.Equal(t, 7.2, row.BuildingAvgROI)

	// The listing's own computed column mirrors the metrics row.
	require.NotNil(t, sale.ROI)
	assert.Equal(t, 7.2, *sale.ROI)
}

func TestRecompute_IncrementalSkipsProcessed(t *testing.T) {
	store := newFakeStore()
	seedMarinaBuilding(store)
	svc := newTestMetricsService(store, 100)
	ctx := context.Background()

	first, err := svc.Recompute(ctx, RecomputeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Processed)

	// Second incremental run finds nothing left to do.
	second, err := svc.Recompute(ctx, RecomputeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Len(t, store.metrics, 3)
}

func TestRecompute_ForceOverwrites(t *testing.T) {
	store := newFakeStore()
	_, sale := seedMarinaBuilding(store)
	svc := newTestMetricsService(store, 100)
	ctx := context.Background()

	_, err := svc.Recompute(ctx, RecomputeOptions{})
	require.NoError(t, err)

	// The market moves: the sale price halves, so ROI doubles.
	sale.Price = floatPtr(500_000)

	result, err := svc.Recompute(ctx, RecomputeOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 3, result.Updated)
	assert.Len(t, store.metrics, 3)

	row := store.metricsByListingID(sale.ID)
	require.NotNil(t, row)
	require.NotNil(t, row.ROI)
	assert.Equal(t, 14.4, *row.ROI)
}

func TestRecompute_BatchingAndLimit(t *testing.T) {
	store := newFakeStore()
	building := store.addBuilding(&model.Building{
		Name: "Big Tower", Address: "Big Tower, Dubai Marina", Area: strPtr("Dubai Marina"),
	})
	for i := 0; i < 5; i++ {
		store.addListing(&model.Listing{
			ExternalID: string(rune('a' + i)), TransactionKind: model.TransactionSell,
			Price: floatPtr(1_000_000), BuildingID: &building.ID,
		})
	}

	svc := newTestMetricsService(store, 2)
	result, err := svc.Recompute(context.Background(), RecomputeOptions{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Batches) // chunk of 2, then chunk of 1
	assert.Len(t, store.metrics, 3)
}

func TestRecompute_DaysOnMarket(t *testing.T) {
	store := newFakeStore()
	building := store.addBuilding(&model.Building{
		Name: "Tower", Address: "Tower, Dubai Marina", Area: strPtr("Dubai Marina"),
	})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	withDate := store.addListing(&model.Listing{
		ExternalID: "l1", TransactionKind: model.TransactionSell,
		Price: floatPtr(1_000_000), BuildingID: &building.ID,
		AddedOn: timePtr(now.AddDate(0, 0, -30)),
	})
	withoutDate := store.addListing(&model.Listing{
		ExternalID: "l2", TransactionKind: model.TransactionSell,
		Price: floatPtr(1_000_000), BuildingID: &building.ID,
	})

	svc := newTestMetricsService(store, 100)
	svc.now = func() time.Time { return now }

	_, err := svc.Recompute(context.Background(), RecomputeOptions{})
	require.NoError(t, err)

	require.NotNil(t, withDate.DaysOnMarket)
	assert.Equal(t, 30, *withDate.DaysOnMarket)
	assert.Nil(t, withoutDate.DaysOnMarket)
}

func TestRecompute_UnlinkedListingGetsBareMetrics(t *testing.T) {
	store := newFakeStore()
	listing := store.addListing(&model.Listing{
		ExternalID: "l1", TransactionKind: model.TransactionSell,
		Price: floatPtr(900_000), AreaSqft: floatPtr(900),
	})

	svc := newTestMetricsService(store, 100)
	_, err := svc.Recompute(context.Background(), RecomputeOptions{})
	require.NoError(t, err)

	row := store.metricsByListingID(listing.ID)
	require.NotNil(t, row)
	assert.Nil(t, row.ROI)
	assert.Equal(t, 1000.0, row.PricePerSqft)
	assert.Zero(t, row.BuildingSaleCount)
}
