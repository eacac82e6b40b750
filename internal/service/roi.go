package service

import (
	"context"
	"fmt"

	"estate-metrics/internal/model"
	"estate-metrics/internal/repository"
	"estate-metrics/pkg/utils"
)

// ROICalculator derives a sale listing's annualized rent-to-price ratio from
// peer rent data. The widening order is authoritative and must not change:
// same building + same bedrooms, then same area + same bedrooms; without a
// bedroom count, same building unfiltered, then same area unfiltered.
type ROICalculator struct {
	listingRepo repository.ListingRepository
}

// NewROICalculator builds a calculator. listingRepo may be nil when only the
// snapshot-backed path is used.
func NewROICalculator(listingRepo repository.ListingRepository) *ROICalculator {
	return &ROICalculator{listingRepo: listingRepo}
}

func roiDefined(listing *model.Listing) bool {
	return listing.TransactionKind == model.TransactionSell &&
		listing.Price != nil && *listing.Price > 0 &&
		listing.BuildingID != nil
}

func roiFromRent(avgRent float64, price float64) *float64 {
	if avgRent <= 0 {
		return nil
	}
	roi := utils.Round2(avgRent * 12 / price * 100)
	return &roi
}

// ComputeFromSnapshot resolves ROI against a pre-built aggregate snapshot.
// Returns nil when ROI is undefined; never zero as a stand-in.
func (c *ROICalculator) ComputeFromSnapshot(listing *model.Listing, snap *Snapshot) *float64 {
	if !roiDefined(listing) {
		return nil
	}

	buildingID := *listing.BuildingID
	areaName := snap.BuildingArea(buildingID)
	if areaName == "" && listing.Building != nil && listing.Building.Area != nil {
		areaName = *listing.Building.Area
	}

	avgRent, n := snap.BuildingRentAvg(buildingID, listing.Bedrooms)
	if n == 0 && areaName != "" {
		avgRent, n = snap.AreaRentAvg(areaName, listing.Bedrooms)
	}
	if n == 0 {
		return nil
	}
	return roiFromRent(avgRent, *listing.Price)
}

// Compute resolves ROI for a single listing against the store, following the
// same widening order as the snapshot path.
func (c *ROICalculator) Compute(ctx context.Context, listing *model.Listing) (*float64, error) {
	if !roiDefined(listing) {
		return nil, nil
	}

	var areaName *string
	if listing.Building != nil && listing.Building.Area != nil && *listing.Building.Area != "" {
		areaName = listing.Building.Area
	}

	avgRent, n, err := c.listingRepo.AverageRent(ctx, model.RentAverageParam{
		BuildingID: listing.BuildingID,
		Bedrooms:   listing.Bedrooms,
	})
	if err != nil {
		return nil, fmt.Errorf("building rent average: %w", err)
	}

	if n == 0 && areaName != nil {
		avgRent, n, err = c.listingRepo.AverageRent(ctx, model.RentAverageParam{
			Area:     areaName,
			Bedrooms: listing.Bedrooms,
		})
		if err != nil {
			return nil, fmt.Errorf("area rent average: %w", err)
		}
	}

	if n == 0 {
		return nil, nil
	}
	return roiFromRent(avgRent, *listing.Price), nil
}
