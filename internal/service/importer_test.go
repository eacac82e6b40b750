package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-metrics/config"
	"estate-metrics/internal/ingest"
	"estate-metrics/internal/model"
	"estate-metrics/internal/repository"
	"estate-metrics/pkg/logger"
)

func newTestImporter(store *fakeStore) *ImportService {
	cfg := &config.Config{Import: config.Import{BatchSize: 100, MaxParallelFiles: 2}}
	repo := &repository.Repository{
		ListingRepo:  store,
		BuildingRepo: store,
		MetricsRepo:  &fakeMetricsRepo{store: store},
		UnitOfWork:   &fakeUnitOfWork{},
	}
	return NewImportService(cfg, logger.NewNop(), repo, nil)
}

func TestImportRecords_CreatesListings(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(store)

	records := []ingest.Record{
		{"id": "a", "title": "First", "price": float64(1_000_000), "priceDuration": "sell"},
		{"id": "b", "title": "Second", "rent": "AED 60,000/year"},
	}

	result, err := importer.ImportRecords(context.Background(), records, model.TransactionRent, false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, store.listings, 2)

	assert.Equal(t, model.TransactionSell, store.listings[0].TransactionKind)
	assert.Equal(t, model.TransactionRent, store.listings[1].TransactionKind)
	require.NotNil(t, store.listings[1].Price)
	assert.Equal(t, 60_000.0, *store.listings[1].Price)
}

func TestImportRecords_SkipsMissingExternalID(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(store)

	records := []ingest.Record{
		{"title": "No id at all"},
		{"id": "ok", "title": "Fine"},
	}

	result, err := importer.ImportRecords(context.Background(), records, "", false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, store.listings, 1)
}

func TestImportRecords_WithinBatchDuplicate(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(store)

	records := []ingest.Record{
		{"id": "dup", "title": "First copy"},
		{"id": "dup", "title": "Second copy"},
	}

	result, err := importer.ImportRecords(context.Background(), records, "", false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, store.listings, 1)
	assert.Equal(t, "First copy", store.listings[0].Title)
}

func TestImportRecords_ExistingUntouchedWithoutUpdateFlag(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(store)
	ctx := context.Background()

	store.addListing(&model.Listing{
		ExternalID: "a", Title: "Original", TransactionKind: model.TransactionSell,
	})

	result, err := importer.ImportRecords(ctx, []ingest.Record{
		{"id": "a", "title": "Changed"},
	}, "", false)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, "Original", store.listings[0].Title)
}

func TestImportRecords_UpdatePreservesEnrichment(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(store)
	ctx := context.Background()

	building := store.addBuilding(&model.Building{
		Name: "Tower", Address: "Tower, Dubai Marina", Area: strPtr("Dubai Marina"),
	})
	store.addListing(&model.Listing{
		ExternalID: "a", Title: "Original", TransactionKind: model.TransactionSell,
		Price: floatPtr(1_000_000), BuildingID: &building.ID,
		ROI: floatPtr(7.2), DaysOnMarket: intPtr(30),
	})

	result, err := importer.ImportRecords(ctx, []ingest.Record{
		{"id": "a", "title": "Relisted", "price": float64(1_100_000), "priceDuration": "sell"},
	}, "", true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	stored := store.listings[0]
	assert.Equal(t, "Relisted", stored.Title)
	require.NotNil(t, stored.Price)
	assert.Equal(t, 1_100_000.0, *stored.Price)

	// Enrichment-owned fields survive the re-import.
	require.NotNil(t, stored.BuildingID)
	assert.Equal(t, building.ID, *stored.BuildingID)
	require.NotNil(t, stored.ROI)
	assert.Equal(t, 7.2, *stored.ROI)
	require.NotNil(t, stored.DaysOnMarket)
	assert.Equal(t, 30, *stored.DaysOnMarket)
}

func TestImportRecords_TruncatesOversizedValues(t *testing.T) {
	store := newFakeStore()
	importer := newTestImporter(store)

	result, err := importer.ImportRecords(context.Background(), []ingest.Record{
		{"id": "a", "title": strings.Repeat("x", 3000)},
	}, "", false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Len(t, store.listings[0].Title, model.MaxLenTitle)
}
