package model

import "time"

// ListingMetrics is the denormalized per-listing metrics cache, written only
// by the batch recompute pass. Peer aggregates default to zero when the peer
// group is empty; the listing's own ROI stays NULL when undefined.
type ListingMetrics struct {
	ID        uint `gorm:"primarykey"`
	ListingID uint `gorm:"not null;uniqueIndex"`

	ROI          *float64 `gorm:"index"`
	PricePerSqft float64  `gorm:"index"`

	BuildingAvgPrice            float64
	BuildingAvgPriceByBedrooms  float64
	BuildingAvgROI              float64 `gorm:"index"`
	BuildingAvgExposureDays     float64 `gorm:"index"`
	BuildingSaleCount           int
	BuildingRentCount           int
	BuildingSaleCountByBedrooms int
	BuildingRentCountByBedrooms int

	AreaAvgDaysOnMarket float64 `gorm:"index"`
	AvgRentByBedrooms   float64

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ListingMetrics) TableName() string {
	return "listing_metrics"
}

// MetricsUpdateFields is the field list overwritten by the recompute pass on
// existing rows.
var MetricsUpdateFields = []string{
	"roi", "price_per_sqft", "building_avg_price", "building_avg_price_by_bedrooms",
	"building_avg_roi", "building_avg_exposure_days", "building_sale_count",
	"building_rent_count", "building_sale_count_by_bedrooms",
	"building_rent_count_by_bedrooms", "area_avg_days_on_market", "avg_rent_by_bedrooms",
}
