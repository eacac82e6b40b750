package repository

import (
	"context"
	"strings"

	"estate-metrics/internal/model"
	"estate-metrics/pkg/utils"

	"gorm.io/gorm"
)

type ListingRepository interface {
	CreateBulk(ctx context.Context, listings []*model.Listing, opts ...utils.DBOption) error
	UpdateFields(ctx context.Context, listing *model.Listing, fields []string, opts ...utils.DBOption) error
	ExistingExternalIDs(ctx context.Context, externalIDs []string) (map[string]struct{}, error)
	FindByExternalIDs(ctx context.Context, externalIDs []string) ([]*model.Listing, error)
	FindBatch(ctx context.Context, param model.ListingBatchParam) ([]*model.Listing, error)
	FindUnlinked(ctx context.Context, limit int) ([]*model.Listing, error)
	FirstByBuildingID(ctx context.Context, buildingID uint) (*model.Listing, error)
	FindByBuildingIDs(ctx context.Context, buildingIDs []uint) ([]*model.Listing, error)
	FindByAreas(ctx context.Context, areas []string) ([]*model.Listing, error)
	SetBuilding(ctx context.Context, listingID, buildingID uint, opts ...utils.DBOption) error
	AverageRent(ctx context.Context, param model.RentAverageParam) (float64, int64, error)
	CohortStats(ctx context.Context, param model.CohortParam) (*model.CohortStats, error)
	List(ctx context.Context, param model.ListListingsParam) ([]*model.Listing, int64, error)
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (l *listingRepository) CreateBulk(ctx context.Context, listings []*model.Listing, opts ...utils.DBOption) error {
	if len(listings) == 0 {
		return nil
	}
	db := utils.ApplyOptions(l.db.WithContext(ctx), opts...)
	return db.CreateInBatches(listings, 500).Error
}

func (l *listingRepository) UpdateFields(ctx context.Context, listing *model.Listing, fields []string, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(l.db.WithContext(ctx), opts...)
	return db.Model(listing).Select(fields).Updates(listing).Error
}

// ExistingExternalIDs answers "which of these ids are already stored" in one
// query, so the import path never probes per record.
func (l *listingRepository) ExistingExternalIDs(ctx context.Context, externalIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(externalIDs))
	if len(externalIDs) == 0 {
		return existing, nil
	}
	var found []string
	err := l.db.WithContext(ctx).Model(&model.Listing{}).
		Where("external_id IN ?", externalIDs).
		Pluck("external_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

func (l *listingRepository) FindByExternalIDs(ctx context.Context, externalIDs []string) ([]*model.Listing, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var listings []*model.Listing
	err := l.db.WithContext(ctx).Where("external_id IN ?", externalIDs).Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// FindBatch selects the next recompute chunk with buildings preloaded. When
// MissingMetricsOnly is set, processed listings drop out of the candidate set
// on their own, so callers keep Offset at zero in that mode.
func (l *listingRepository) FindBatch(ctx context.Context, param model.ListingBatchParam) ([]*model.Listing, error) {
	query := l.db.WithContext(ctx).Model(&model.Listing{}).Preload("Building")

	if param.MissingMetricsOnly {
		query = query.
			Joins("LEFT JOIN listing_metrics lm ON lm.listing_id = listings.id").
			Where("lm.id IS NULL")
	}

	query = query.Order("listings.id ASC")
	if param.Offset > 0 {
		query = query.Offset(param.Offset)
	}
	if param.Limit > 0 {
		query = query.Limit(param.Limit)
	}

	var listings []*model.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (l *listingRepository) FindUnlinked(ctx context.Context, limit int) ([]*model.Listing, error) {
	query := l.db.WithContext(ctx).
		Where("building_id IS NULL").
		Where("display_address IS NOT NULL AND display_address <> ''").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var listings []*model.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (l *listingRepository) FirstByBuildingID(ctx context.Context, buildingID uint) (*model.Listing, error) {
	var listing model.Listing
	err := l.db.WithContext(ctx).Where("building_id = ?", buildingID).Order("id ASC").First(&listing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (l *listingRepository) FindByBuildingIDs(ctx context.Context, buildingIDs []uint) ([]*model.Listing, error) {
	if len(buildingIDs) == 0 {
		return nil, nil
	}
	var listings []*model.Listing
	err := l.db.WithContext(ctx).
		Preload("Building").
		Where("building_id IN ?", buildingIDs).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (l *listingRepository) FindByAreas(ctx context.Context, areas []string) ([]*model.Listing, error) {
	if len(areas) == 0 {
		return nil, nil
	}
	var listings []*model.Listing
	err := l.db.WithContext(ctx).
		Preload("Building").
		Joins("JOIN buildings ON buildings.id = listings.building_id").
		Where("buildings.area IN ?", areas).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (l *listingRepository) SetBuilding(ctx context.Context, listingID, buildingID uint, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(l.db.WithContext(ctx), opts...)
	return db.Model(&model.Listing{}).Where("id = ?", listingID).Update("building_id", buildingID).Error
}

type avgRow struct {
	Avg float64
	Cnt int64
}

// AverageRent averages rent-listing prices over a building- or area-scoped
// cohort, optionally narrowed by bedroom count.
func (l *listingRepository) AverageRent(ctx context.Context, param model.RentAverageParam) (float64, int64, error) {
	query := l.db.WithContext(ctx).Model(&model.Listing{}).
		Where("listings.transaction_kind = ?", model.TransactionRent).
		Where("listings.price IS NOT NULL")

	switch {
	case param.BuildingID != nil:
		query = query.Where("listings.building_id = ?", *param.BuildingID)
	case param.Area != nil:
		query = query.
			Joins("JOIN buildings ON buildings.id = listings.building_id").
			Where("buildings.area = ?", *param.Area)
	}

	if param.Bedrooms != nil {
		query = query.Where("listings.bedrooms = ?", *param.Bedrooms)
	}

	var row avgRow
	err := query.
		Select("COALESCE(AVG(listings.price), 0) AS avg, COUNT(*) AS cnt").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Cnt, nil
}

func (l *listingRepository) CohortStats(ctx context.Context, param model.CohortParam) (*model.CohortStats, error) {
	query := l.db.WithContext(ctx).Model(&model.Listing{}).
		Where("building_id = ?", param.BuildingID)

	if param.TransactionKind != "" {
		query = query.Where("transaction_kind = ?", param.TransactionKind)
	}
	if param.Bedrooms != nil {
		query = query.Where("bedrooms = ?", *param.Bedrooms)
	}

	var row struct {
		Cnt         int64
		AvgPrice    float64
		AvgROI      float64
		AvgExposure float64
	}
	err := query.Select(
		"COUNT(*) AS cnt, " +
			"COALESCE(AVG(price), 0) AS avg_price, " +
			"COALESCE(AVG(roi), 0) AS avg_roi, " +
			"COALESCE(AVG(days_on_market), 0) AS avg_exposure").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &model.CohortStats{
		Count:           row.Cnt,
		AvgPrice:        row.AvgPrice,
		AvgROI:          row.AvgROI,
		AvgExposureDays: row.AvgExposure,
	}, nil
}

// listSortColumns whitelists read-side sort keys against the metrics join.
var listSortColumns = map[string]string{
	"price":                      "listings.price",
	"added_on":                   "listings.added_on",
	"days_on_market":             "listings.days_on_market",
	"roi":                        "lm.roi",
	"price_per_sqft":             "lm.price_per_sqft",
	"building_avg_roi":           "lm.building_avg_roi",
	"building_avg_exposure_days": "lm.building_avg_exposure_days",
	"area_avg_days_on_market":    "lm.area_avg_days_on_market",
}

// List serves the read side: listings joined with their precomputed metrics
// row so sorting and filtering never recompute anything.
func (l *listingRepository) List(ctx context.Context, param model.ListListingsParam) ([]*model.Listing, int64, error) {
	query := l.db.WithContext(ctx).Model(&model.Listing{}).
		Joins("LEFT JOIN listing_metrics lm ON lm.listing_id = listings.id")

	if param.TransactionKind != "" {
		query = query.Where("listings.transaction_kind = ?", param.TransactionKind)
	}
	if param.Area != "" {
		query = query.
			Joins("JOIN buildings ON buildings.id = listings.building_id").
			Where("buildings.area = ?", param.Area)
	}
	if param.Bedrooms != nil {
		query = query.Where("listings.bedrooms = ?", *param.Bedrooms)
	}
	if param.MinROI != nil {
		query = query.Where("lm.roi >= ?", *param.MinROI)
	}
	if param.MaxPrice != nil {
		query = query.Where("listings.price <= ?", *param.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if column, ok := listSortColumns[strings.ToLower(param.SortBy)]; ok {
		direction := "ASC"
		if param.SortDesc {
			direction = "DESC"
		}
		query = query.Order(column + " " + direction + " NULLS LAST")
	} else {
		query = query.Order("listings.created_at DESC")
	}

	if param.Offset > 0 {
		query = query.Offset(param.Offset)
	}
	if param.Limit > 0 {
		query = query.Limit(param.Limit)
	}

	var listings []*model.Listing
	err := query.Preload("Building").Preload("Metrics").Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
