package repository

import (
	"context"

	"estate-metrics/internal/model"
	"estate-metrics/pkg/utils"

	"gorm.io/gorm"
)

type MetricsRepository interface {
	ExistingListingIDs(ctx context.Context, listingIDs []uint) (map[uint]uint, error)
	CreateBulk(ctx context.Context, rows []*model.ListingMetrics, opts ...utils.DBOption) error
	UpdateFields(ctx context.Context, row *model.ListingMetrics, fields []string, opts ...utils.DBOption) error
	Count(ctx context.Context) (int64, error)
}

type metricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository(db *gorm.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

// ExistingListingIDs maps listing id to its metrics row id for the given set,
// in one query. The recompute pass uses it to partition a batch into the
// create-set and update-set.
func (m *metricsRepository) ExistingListingIDs(ctx context.Context, listingIDs []uint) (map[uint]uint, error) {
	existing := make(map[uint]uint, len(listingIDs))
	if len(listingIDs) == 0 {
		return existing, nil
	}

	var rows []model.ListingMetrics
	err := m.db.WithContext(ctx).
		Select("id", "listing_id").
		Where("listing_id IN ?", listingIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		existing[row.ListingID] = row.ID
	}
	return existing, nil
}

func (m *metricsRepository) CreateBulk(ctx context.Context, rows []*model.ListingMetrics, opts ...utils.DBOption) error {
	if len(rows) == 0 {
		return nil
	}
	db := utils.ApplyOptions(m.db.WithContext(ctx), opts...)
	return db.CreateInBatches(rows, 500).Error
}

func (m *metricsRepository) UpdateFields(ctx context.Context, row *model.ListingMetrics, fields []string, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(m.db.WithContext(ctx), opts...)
	return db.Model(row).Select(fields).Updates(row).Error
}

func (m *metricsRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).Model(&model.ListingMetrics{}).Count(&count).Error
	return count, err
}
