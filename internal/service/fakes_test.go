package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"estate-metrics/internal/model"
	"estate-metrics/pkg/utils"
)

// fakeStore is an in-memory stand-in for the repository layer, shared by the
// service tests. It implements ListingRepository, BuildingRepository,
// MetricsRepository and UnitOfWork over plain slices.
type fakeStore struct {
	listings  []*model.Listing
	buildings []*model.Building
	metrics   []*model.ListingMetrics

	nextListingID  uint
	nextBuildingID uint
	nextMetricsID  uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextListingID: 1, nextBuildingID: 1, nextMetricsID: 1}
}

func (f *fakeStore) addBuilding(b *model.Building) *model.Building {
	b.ID = f.nextBuildingID
	f.nextBuildingID++
	f.buildings = append(f.buildings, b)
	return b
}

func (f *fakeStore) addListing(l *model.Listing) *model.Listing {
	l.ID = f.nextListingID
	f.nextListingID++
	f.attachBuilding(l)
	f.listings = append(f.listings, l)
	return l
}

func (f *fakeStore) buildingByID(id uint) *model.Building {
	for _, b := range f.buildings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (f *fakeStore) attachBuilding(l *model.Listing) {
	if l.BuildingID != nil {
		l.Building = f.buildingByID(*l.BuildingID)
	}
}

func (f *fakeStore) metricsByListingID(id uint) *model.ListingMetrics {
	for _, m := range f.metrics {
		if m.ListingID == id {
			return m
		}
	}
	return nil
}

// --- ListingRepository ---

func (f *fakeStore) CreateBulk(ctx context.Context, listings []*model.Listing, opts ...utils.DBOption) error {
	for _, l := range listings {
		f.addListing(l)
	}
	return nil
}

func (f *fakeStore) UpdateFields(ctx context.Context, listing *model.Listing, fields []string, opts ...utils.DBOption) error {
	// Tests hand the stored pointers back, so the mutation already happened.
	return nil
}

func (f *fakeStore) ExistingExternalIDs(ctx context.Context, externalIDs []string) (map[string]struct{}, error) {
	wanted := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		wanted[id] = struct{}{}
	}
	existing := make(map[string]struct{})
	for _, l := range f.listings {
		if _, ok := wanted[l.ExternalID]; ok {
			existing[l.ExternalID] = struct{}{}
		}
	}
	return existing, nil
}

func (f *fakeStore) FindByExternalIDs(ctx context.Context, externalIDs []string) ([]*model.Listing, error) {
	wanted := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		wanted[id] = struct{}{}
	}
	var found []*model.Listing
	for _, l := range f.listings {
		if _, ok := wanted[l.ExternalID]; ok {
			found = append(found, l)
		}
	}
	return found, nil
}

func (f *fakeStore) FindBatch(ctx context.Context, param model.ListingBatchParam) ([]*model.Listing, error) {
	var candidates []*model.Listing
	for _, l := range f.listings {
		if param.MissingMetricsOnly && f.metricsByListingID(l.ID) != nil {
			continue
		}
		f.attachBuilding(l)
		candidates = append(candidates, l)
	}
	if param.Offset > 0 {
		if param.Offset >= len(candidates) {
			return nil, nil
		}
		candidates = candidates[param.Offset:]
	}
	if param.Limit > 0 && len(candidates) > param.Limit {
		candidates = candidates[:param.Limit]
	}
	return candidates, nil
}

func (f *fakeStore) FindUnlinked(ctx context.Context, limit int) ([]*model.Listing, error) {
	var found []*model.Listing
	for _, l := range f.listings {
		if l.BuildingID == nil && l.DisplayAddress != "" {
			found = append(found, l)
		}
		if limit > 0 && len(found) == limit {
			break
		}
	}
	return found, nil
}

func (f *fakeStore) FirstByBuildingID(ctx context.Context, buildingID uint) (*model.Listing, error) {
	for _, l := range f.listings {
		if l.BuildingID != nil && *l.BuildingID == buildingID {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByBuildingIDs(ctx context.Context, buildingIDs []uint) ([]*model.Listing, error) {
	wanted := make(map[uint]struct{}, len(buildingIDs))
	for _, id := range buildingIDs {
		wanted[id] = struct{}{}
	}
	var found []*model.Listing
	for _, l := range f.listings {
		if l.BuildingID == nil {
			continue
		}
		if _, ok := wanted[*l.BuildingID]; ok {
			f.attachBuilding(l)
			found = append(found, l)
		}
	}
	return found, nil
}

func (f *fakeStore) FindByAreas(ctx context.Context, areas []string) ([]*model.Listing, error) {
	wanted := make(map[string]struct{}, len(areas))
	for _, a := range areas {
		wanted[a] = struct{}{}
	}
	var found []*model.Listing
	for _, l := range f.listings {
		if l.BuildingID == nil {
			continue
		}
		f.attachBuilding(l)
		if l.Building == nil || l.Building.Area == nil {
			continue
		}
		if _, ok := wanted[*l.Building.Area]; ok {
			found = append(found, l)
		}
	}
	return found, nil
}

func (f *fakeStore) SetBuilding(ctx context.Context, listingID, buildingID uint, opts ...utils.DBOption) error {
	for _, l := range f.listings {
		if l.ID == listingID {
			l.BuildingID = &buildingID
			f.attachBuilding(l)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) AverageRent(ctx context.Context, param model.RentAverageParam) (float64, int64, error) {
	var sum float64
	var count int64
	for _, l := range f.listings {
		if l.TransactionKind != model.TransactionRent || l.Price == nil {
			continue
		}
		switch {
		case param.BuildingID != nil:
			if l.BuildingID == nil || *l.BuildingID != *param.BuildingID {
				continue
			}
		case param.Area != nil:
			f.attachBuilding(l)
			if l.Building == nil || l.Building.Area == nil || *l.Building.Area != *param.Area {
				continue
			}
		}
		if param.Bedrooms != nil && (l.Bedrooms == nil || *l.Bedrooms != *param.Bedrooms) {
			continue
		}
		sum += *l.Price
		count++
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (f *fakeStore) CohortStats(ctx context.Context, param model.CohortParam) (*model.CohortStats, error) {
	stats := &model.CohortStats{}
	var priceSum, roiSum, exposureSum float64
	var priceN, roiN, exposureN int64
	for _, l := range f.listings {
		if l.BuildingID == nil || *l.BuildingID != param.BuildingID {
			continue
		}
		if param.TransactionKind != "" && l.TransactionKind != param.TransactionKind {
			continue
		}
		if param.Bedrooms != nil && (l.Bedrooms == nil || *l.Bedrooms != *param.Bedrooms) {
			continue
		}
		stats.Count++
		if l.Price != nil {
			priceSum += *l.Price
			priceN++
		}
		if l.ROI != nil {
			roiSum += *l.ROI
			roiN++
		}
		if l.DaysOnMarket != nil {
			exposureSum += float64(*l.DaysOnMarket)
			exposureN++
		}
	}
	if priceN > 0 {
		stats.AvgPrice = priceSum / float64(priceN)
	}
	if roiN > 0 {
		stats.AvgROI = roiSum / float64(roiN)
	}
	if exposureN > 0 {
		stats.AvgExposureDays = exposureSum / float64(exposureN)
	}
	return stats, nil
}

func (f *fakeStore) List(ctx context.Context, param model.ListListingsParam) ([]*model.Listing, int64, error) {
	var found []*model.Listing
	for _, l := range f.listings {
		if param.TransactionKind != "" && l.TransactionKind != param.TransactionKind {
			continue
		}
		f.attachBuilding(l)
		found = append(found, l)
	}
	return found, int64(len(found)), nil
}

// --- BuildingRepository ---

func (f *fakeStore) GetOrCreate(ctx context.Context, building *model.Building, opts ...utils.DBOption) (*model.Building, bool, error) {
	for _, b := range f.buildings {
		if strings.EqualFold(b.Name, building.Name) && b.Address == building.Address {
			return b, false, nil
		}
	}
	return f.addBuilding(building), true, nil
}

func (f *fakeStore) UpdateArea(ctx context.Context, id uint, area string, opts ...utils.DBOption) error {
	if b := f.buildingByID(id); b != nil {
		b.Area = &area
	}
	return nil
}

func (f *fakeStore) FindByIDs(ctx context.Context, ids []uint) ([]*model.Building, error) {
	var found []*model.Building
	for _, id := range ids {
		if b := f.buildingByID(id); b != nil {
			found = append(found, b)
		}
	}
	return found, nil
}

func (f *fakeStore) FindWithoutArea(ctx context.Context) ([]*model.Building, error) {
	var found []*model.Building
	for _, b := range f.buildings {
		if b.Area == nil || *b.Area == "" {
			found = append(found, b)
		}
	}
	return found, nil
}

// --- MetricsRepository ---

func (f *fakeStore) ExistingListingIDs(ctx context.Context, listingIDs []uint) (map[uint]uint, error) {
	wanted := make(map[uint]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		wanted[id] = struct{}{}
	}
	existing := make(map[uint]uint)
	for _, m := range f.metrics {
		if _, ok := wanted[m.ListingID]; ok {
			existing[m.ListingID] = m.ID
		}
	}
	return existing, nil
}

func (f *fakeStore) createMetricsBulk(rows []*model.ListingMetrics) {
	for _, row := range rows {
		row.ID = f.nextMetricsID
		f.nextMetricsID++
		f.metrics = append(f.metrics, row)
	}
}

func (f *fakeStore) updateMetrics(row *model.ListingMetrics) {
	for i, m := range f.metrics {
		if m.ID == row.ID {
			f.metrics[i] = row
			return
		}
	}
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.metrics)), nil
}

// fakeMetricsRepo adapts fakeStore's metrics methods, since CreateBulk and
// UpdateFields collide with the listing signatures on the shared struct.
type fakeMetricsRepo struct {
	store *fakeStore
}

func (f *fakeMetricsRepo) ExistingListingIDs(ctx context.Context, listingIDs []uint) (map[uint]uint, error) {
	return f.store.ExistingListingIDs(ctx, listingIDs)
}

func (f *fakeMetricsRepo) CreateBulk(ctx context.Context, rows []*model.ListingMetrics, opts ...utils.DBOption) error {
	f.store.createMetricsBulk(rows)
	return nil
}

func (f *fakeMetricsRepo) UpdateFields(ctx context.Context, row *model.ListingMetrics, fields []string, opts ...utils.DBOption) error {
	f.store.updateMetrics(row)
	return nil
}

func (f *fakeMetricsRepo) Count(ctx context.Context) (int64, error) {
	return f.store.Count(ctx)
}

// fakeUnitOfWork runs the closure directly; the fake store has no
// transactions to speak of.
type fakeUnitOfWork struct{}

func (f *fakeUnitOfWork) Begin() *gorm.DB  { return nil }
func (f *fakeUnitOfWork) Commit() error    { return nil }
func (f *fakeUnitOfWork) Rollback() error  { return nil }
func (f *fakeUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error { return fn() }

// --- test helpers ---

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func strPtr(v string) *string       { return &v }
func timePtr(t time.Time) *time.Time { return &t }
