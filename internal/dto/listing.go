package dto

import (
	"time"

	"estate-metrics/internal/model"
)

type ListListingsRequest struct {
	TransactionKind string   `query:"transaction_kind" validate:"omitempty,oneof=sell rent"`
	Area            string   `query:"area"`
	Bedrooms        *int     `query:"bedrooms" validate:"omitempty,gte=0"`
	MinROI          *float64 `query:"min_roi"`
	MaxPrice        *float64 `query:"max_price" validate:"omitempty,gt=0"`
	SortBy          string   `query:"sort_by"`
	SortDesc        bool     `query:"sort_desc"`
	Limit           int      `query:"limit" validate:"omitempty,gte=1,lte=200"`
	Page            int      `query:"page" validate:"omitempty,gte=1"`
}

type ListingMetricsResponse struct {
	ROI                         *float64 `json:"roi"`
	PricePerSqft                float64  `json:"price_per_sqft"`
	BuildingAvgPrice            float64  `json:"building_avg_price"`
	BuildingAvgPriceByBedrooms  float64  `json:"building_avg_price_by_bedrooms"`
	BuildingAvgROI              float64  `json:"building_avg_roi"`
	BuildingAvgExposureDays     float64  `json:"building_avg_exposure_days"`
	BuildingSaleCount           int      `json:"building_sale_count"`
	BuildingRentCount           int      `json:"building_rent_count"`
	BuildingSaleCountByBedrooms int      `json:"building_sale_count_by_bedrooms"`
	BuildingRentCountByBedrooms int      `json:"building_rent_count_by_bedrooms"`
	AreaAvgDaysOnMarket         float64  `json:"area_avg_days_on_market"`
	AvgRentByBedrooms           float64  `json:"avg_rent_by_bedrooms"`
}

type ListingResponse struct {
	ID              uint                    `json:"id"`
	ExternalID      string                  `json:"external_id"`
	URL             string                  `json:"url,omitempty"`
	Title           string                  `json:"title"`
	DisplayAddress  string                  `json:"display_address"`
	Bedrooms        *int                    `json:"bedrooms"`
	Bathrooms       *int                    `json:"bathrooms"`
	AreaSqft        *float64                `json:"area_sqft"`
	Price           *float64                `json:"price"`
	PriceCurrency   string                  `json:"price_currency"`
	TransactionKind string                  `json:"transaction_kind"`
	BuildingName    string                  `json:"building_name,omitempty"`
	Area            string                  `json:"area,omitempty"`
	ROI             *float64                `json:"roi"`
	DaysOnMarket    *int                    `json:"days_on_market"`
	AddedOn         *time.Time              `json:"added_on"`
	Metrics         *ListingMetricsResponse `json:"metrics,omitempty"`
}

type ListListingsResponse struct {
	Items []ListingResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func ToListingResponse(listing *model.Listing) ListingResponse {
	resp := ListingResponse{
		ID:              listing.ID,
		ExternalID:      listing.ExternalID,
		URL:             listing.URL,
		Title:           listing.Title,
		DisplayAddress:  listing.DisplayAddress,
		Bedrooms:        listing.Bedrooms,
		Bathrooms:       listing.Bathrooms,
		AreaSqft:        listing.AreaSqft,
		Price:           listing.Price,
		PriceCurrency:   listing.PriceCurrency,
		TransactionKind: listing.TransactionKind,
		ROI:             listing.ROI,
		DaysOnMarket:    listing.DaysOnMarket,
		AddedOn:         listing.AddedOn,
	}
	if listing.Building != nil {
		resp.BuildingName = listing.Building.Name
		if listing.Building.Area != nil {
			resp.Area = *listing.Building.Area
		}
	}
	if listing.Metrics != nil {
		m := listing.Metrics
		resp.Metrics = &ListingMetricsResponse{
			ROI:                         m.ROI,
			PricePerSqft:                m.PricePerSqft,
			BuildingAvgPrice:            m.BuildingAvgPrice,
			BuildingAvgPriceByBedrooms:  m.BuildingAvgPriceByBedrooms,
			BuildingAvgROI:              m.BuildingAvgROI,
			BuildingAvgExposureDays:     m.BuildingAvgExposureDays,
			BuildingSaleCount:           m.BuildingSaleCount,
			BuildingRentCount:           m.BuildingRentCount,
			BuildingSaleCountByBedrooms: m.BuildingSaleCountByBedrooms,
			BuildingRentCountByBedrooms: m.BuildingRentCountByBedrooms,
			AreaAvgDaysOnMarket:         m.AreaAvgDaysOnMarket,
			AvgRentByBedrooms:           m.AvgRentByBedrooms,
		}
	}
	return resp
}

type CohortStatsRequest struct {
	Bedrooms        *int   `query:"bedrooms" validate:"omitempty,gte=0"`
	TransactionKind string `query:"transaction_kind" validate:"omitempty,oneof=sell rent"`
}

type CohortStatsResponse struct {
	Count           int64   `json:"count"`
	AvgPrice        float64 `json:"avg_price"`
	AvgROI          float64 `json:"avg_roi"`
	AvgExposureDays float64 `json:"avg_exposure_days"`
}

type RecomputeRequest struct {
	Force     bool `json:"force"`
	Limit     int  `json:"limit" validate:"omitempty,gte=0"`
	BatchSize int  `json:"batch_size" validate:"omitempty,gte=0"`
}

type RecomputeResponse struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Batches   int `json:"batches"`
}

type LinkBuildingsRequest struct {
	Limit int `json:"limit" validate:"omitempty,gte=0"`
}

type LinkBuildingsResponse struct {
	Linked       int `json:"linked"`
	AreasUpdated int `json:"areas_updated"`
}

type ImportURLRequest struct {
	URL            string `json:"url" validate:"required,url"`
	UpdateExisting bool   `json:"update_existing"`
}

type ImportResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}
