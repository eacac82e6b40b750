package service

import (
	"context"
	"regexp"
	"strings"

	"estate-metrics/internal/area"
	"estate-metrics/internal/model"
	"estate-metrics/internal/repository"
	"estate-metrics/pkg/logger"
)

var (
	numericTokenRe = regexp.MustCompile(`\b\d+\b`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// LinkerService attaches listings to canonical buildings and keeps building
// area assignments fresh.
type LinkerService struct {
	log          *logger.Logger
	areaResolver *area.Resolver
	listingRepo  repository.ListingRepository
	buildingRepo repository.BuildingRepository
}

func NewLinkerService(log *logger.Logger, areaResolver *area.Resolver, listingRepo repository.ListingRepository, buildingRepo repository.BuildingRepository) *LinkerService {
	return &LinkerService{
		log:          log,
		areaResolver: areaResolver,
		listingRepo:  listingRepo,
		buildingRepo: buildingRepo,
	}
}

// DeriveBuildingName extracts a building name from a display address: the
// text before the first comma, with free-standing unit and floor numbers
// stripped. "904 Marina Heights Tower, Dubai Marina" and "Marina Heights
// Tower, Dubai Marina" collapse to the same building.
func DeriveBuildingName(address string) string {
	segment := address
	if i := strings.Index(address, ","); i >= 0 {
		segment = address[:i]
	}
	segment = numericTokenRe.ReplaceAllString(segment, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(segment, " "))
}

// LinkOrCreate resolves the building for one listing, creating it on first
// sight. Listings without a usable address, or already linked, are left
// alone and return nil.
func (s *LinkerService) LinkOrCreate(ctx context.Context, listing *model.Listing) (*model.Building, error) {
	if listing.BuildingID != nil || listing.DisplayAddress == "" {
		return nil, nil
	}

	name := DeriveBuildingName(listing.DisplayAddress)
	if name == "" {
		return nil, nil
	}

	candidate := &model.Building{
		Name:      name,
		Address:   listing.DisplayAddress,
		Latitude:  listing.Latitude,
		Longitude: listing.Longitude,
	}
	var resolvedArea *string
	if areaName, ok := s.areaResolver.Resolve(listing.DisplayAddress); ok {
		resolvedArea = &areaName
		candidate.Area = &areaName
	}

	building, created, err := s.buildingRepo.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, err
	}

	// An earlier listing may have created the building before its address
	// carried a recognizable area token. Backfill when this one resolves.
	if !created && resolvedArea != nil && (building.Area == nil || *building.Area == "") {
		if err := s.buildingRepo.UpdateArea(ctx, building.ID, *resolvedArea); err != nil {
			s.log.WarnContext(ctx, "Failed to backfill building area",
				logger.IntField("building_id", int(building.ID)),
				logger.ErrorField(err),
			)
		} else {
			building.Area = resolvedArea
		}
	}

	return building, nil
}

// LinkUnlinked runs the linkage pass over listings with no building. A
// failure on one listing is logged and does not stop the pass. limit <= 0
// means no cap.
func (s *LinkerService) LinkUnlinked(ctx context.Context, limit int) (int, error) {
	listings, err := s.listingRepo.FindUnlinked(ctx, limit)
	if err != nil {
		return 0, err
	}

	linked := 0
	for _, listing := range listings {
		if err := ctx.Err(); err != nil {
			return linked, err
		}

		building, err := s.LinkOrCreate(ctx, listing)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to link listing",
				logger.StringField("external_id", listing.ExternalID),
				logger.ErrorField(err),
			)
			continue
		}
		if building == nil {
			continue
		}

		if err := s.listingRepo.SetBuilding(ctx, listing.ID, building.ID); err != nil {
			s.log.WarnContext(ctx, "Failed to set building on listing",
				logger.StringField("external_id", listing.ExternalID),
				logger.ErrorField(err),
			)
			continue
		}
		linked++
	}

	s.log.InfoContext(ctx, "Building linkage pass finished",
		logger.IntField("candidates", len(listings)),
		logger.IntField("linked", linked),
	)
	return linked, nil
}

// RefreshAreas retries area resolution for buildings that have none, using a
// linked listing's address first and the building's own address as fallback.
// Useful after the canonical area list grows.
func (s *LinkerService) RefreshAreas(ctx context.Context) (int, error) {
	buildings, err := s.buildingRepo.FindWithoutArea(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, building := range buildings {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		address := building.Address
		sample, err := s.listingRepo.FirstByBuildingID(ctx, building.ID)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to load sample listing for building",
				logger.IntField("building_id", int(building.ID)),
				logger.ErrorField(err),
			)
		} else if sample != nil && sample.DisplayAddress != "" {
			address = sample.DisplayAddress
		}

		areaName, ok := s.areaResolver.Resolve(address)
		if !ok {
			continue
		}
		if err := s.buildingRepo.UpdateArea(ctx, building.ID, areaName); err != nil {
			s.log.WarnContext(ctx, "Failed to update building area",
				logger.IntField("building_id", int(building.ID)),
				logger.ErrorField(err),
			)
			continue
		}
		updated++
	}

	s.log.InfoContext(ctx, "Area refresh pass finished",
		logger.IntField("candidates", len(buildings)),
		logger.IntField("updated", updated),
	)
	return updated, nil
}
