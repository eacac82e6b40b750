package service

import (
	"context"
	"fmt"
	"time"

	"estate-metrics/internal/model"
	"estate-metrics/internal/repository"
	"estate-metrics/pkg/cache"
	"estate-metrics/pkg/logger"
)

// PeerAggregator computes peer-group statistics. Interactive lookups go to
// the store (memoized briefly); the batch recompute pass instead builds one
// in-memory Snapshot per chunk and answers every per-listing lookup from it.
type PeerAggregator struct {
	log           *logger.Logger
	listingRepo   repository.ListingRepository
	inmemoryCache cache.Cache
	cacheTTL      time.Duration
}

func NewPeerAggregator(log *logger.Logger, listingRepo repository.ListingRepository, inmemoryCache cache.Cache, cacheTTL time.Duration) *PeerAggregator {
	return &PeerAggregator{
		log:           log,
		listingRepo:   listingRepo,
		inmemoryCache: inmemoryCache,
		cacheTTL:      cacheTTL,
	}
}

// CohortStats answers an interactive peer-group query. Averages over an empty
// cohort are zero; callers tell "no data" apart from a true zero via Count.
func (a *PeerAggregator) CohortStats(ctx context.Context, param model.CohortParam) (*model.CohortStats, error) {
	key := cohortCacheKey(param)
	if a.inmemoryCache != nil {
		if cached, found := a.inmemoryCache.Get(key); found {
			if stats, ok := cached.(*model.CohortStats); ok {
				return stats, nil
			}
		}
	}

	stats, err := a.listingRepo.CohortStats(ctx, param)
	if err != nil {
		return nil, fmt.Errorf("cohort stats for building %d: %w", param.BuildingID, err)
	}

	if a.inmemoryCache != nil {
		a.inmemoryCache.Set(key, stats, a.cacheTTL)
	}
	return stats, nil
}

func cohortCacheKey(param model.CohortParam) string {
	bedrooms := -1
	if param.Bedrooms != nil {
		bedrooms = *param.Bedrooms
	}
	return fmt.Sprintf("cohort:%d:%s:%d", param.BuildingID, param.TransactionKind, bedrooms)
}

// sumCount accumulates a running average.
type sumCount struct {
	sum   float64
	count int
}

func (s *sumCount) add(v float64) {
	s.sum += v
	s.count++
}

func (s sumCount) avg() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

type bedroomAggregate struct {
	salePrice sumCount
	rentPrice sumCount
	saleCount int
	rentCount int
}

type buildingAggregate struct {
	area      string
	salePrice sumCount
	rentPrice sumCount
	roi       sumCount
	exposure  sumCount
	saleCount int
	rentCount int
	bedrooms  map[int]*bedroomAggregate
}

type areaAggregate struct {
	daysOnMarket   sumCount
	rentPrice      sumCount
	rentByBedrooms map[int]*sumCount
}

// Snapshot holds every aggregate a recompute chunk needs, partitioned once by
// building (and bedroom count within building) and by area.
type Snapshot struct {
	buildings map[uint]*buildingAggregate
	areas     map[string]*areaAggregate
}

// BuildSnapshot pre-partitions the peer set for one batch: all listings in
// the batch's buildings, plus all listings in those buildings' areas for the
// area-level fallbacks. The store is queried once per scope, never per
// listing.
func (a *PeerAggregator) BuildSnapshot(ctx context.Context, batch []*model.Listing) (*Snapshot, error) {
	snap := &Snapshot{
		buildings: make(map[uint]*buildingAggregate),
		areas:     make(map[string]*areaAggregate),
	}

	buildingIDs := distinctBuildingIDs(batch)
	if len(buildingIDs) == 0 {
		return snap, nil
	}

	peers, err := a.listingRepo.FindByBuildingIDs(ctx, buildingIDs)
	if err != nil {
		return nil, fmt.Errorf("load building peers: %w", err)
	}

	areas := distinctAreas(batch, peers)
	areaListings, err := a.listingRepo.FindByAreas(ctx, areas)
	if err != nil {
		return nil, fmt.Errorf("load area peers: %w", err)
	}

	for _, peer := range peers {
		snap.addBuildingPeer(peer)
	}
	for _, peer := range areaListings {
		snap.addAreaPeer(peer)
	}

	// Building ROI averages need the area partitions in place first, since
	// each sale peer's ROI may fall back to its area's rent average.
	calc := NewROICalculator(nil)
	for _, peer := range peers {
		if peer.TransactionKind != model.TransactionSell || peer.BuildingID == nil {
			continue
		}
		if roi := calc.ComputeFromSnapshot(peer, snap); roi != nil {
			snap.buildings[*peer.BuildingID].roi.add(*roi)
		}
	}

	a.log.DebugContext(ctx, "Built aggregate snapshot",
		logger.IntField("buildings", len(snap.buildings)),
		logger.IntField("areas", len(snap.areas)),
		logger.IntField("peer_listings", len(peers)),
	)
	return snap, nil
}

func (s *Snapshot) addBuildingPeer(peer *model.Listing) {
	if peer.BuildingID == nil {
		return
	}
	agg, ok := s.buildings[*peer.BuildingID]
	if !ok {
		agg = &buildingAggregate{bedrooms: make(map[int]*bedroomAggregate)}
		if peer.Building != nil && peer.Building.Area != nil {
			agg.area = *peer.Building.Area
		}
		s.buildings[*peer.BuildingID] = agg
	}

	var bed *bedroomAggregate
	if peer.Bedrooms != nil {
		bed, ok = agg.bedrooms[*peer.Bedrooms]
		if !ok {
			bed = &bedroomAggregate{}
			agg.bedrooms[*peer.Bedrooms] = bed
		}
	}

	switch peer.TransactionKind {
	case model.TransactionSell:
		agg.saleCount++
		if bed != nil {
			bed.saleCount++
		}
		if peer.Price != nil {
			agg.salePrice.add(*peer.Price)
			if bed != nil {
				bed.salePrice.add(*peer.Price)
			}
		}
	case model.TransactionRent:
		agg.rentCount++
		if bed != nil {
			bed.rentCount++
		}
		if peer.Price != nil {
			agg.rentPrice.add(*peer.Price)
			if bed != nil {
				bed.rentPrice.add(*peer.Price)
			}
		}
	}

	if peer.DaysOnMarket != nil {
		agg.exposure.add(float64(*peer.DaysOnMarket))
	}
}

func (s *Snapshot) addAreaPeer(peer *model.Listing) {
	if peer.Building == nil || peer.Building.Area == nil {
		return
	}
	name := *peer.Building.Area
	agg, ok := s.areas[name]
	if !ok {
		agg = &areaAggregate{rentByBedrooms: make(map[int]*sumCount)}
		s.areas[name] = agg
	}

	if peer.DaysOnMarket != nil {
		agg.daysOnMarket.add(float64(*peer.DaysOnMarket))
	}

	if peer.TransactionKind == model.TransactionRent && peer.Price != nil {
		agg.rentPrice.add(*peer.Price)
		if peer.Bedrooms != nil {
			bed, ok := agg.rentByBedrooms[*peer.Bedrooms]
			if !ok {
				bed = &sumCount{}
				agg.rentByBedrooms[*peer.Bedrooms] = bed
			}
			bed.add(*peer.Price)
		}
	}
}

// BuildingArea returns the resolved area of a building in the snapshot, empty
// when unknown.
func (s *Snapshot) BuildingArea(buildingID uint) string {
	if agg, ok := s.buildings[buildingID]; ok {
		return agg.area
	}
	return ""
}

// BuildingRentAvg averages rent prices in a building, optionally narrowed by
// bedroom count. n is the number of contributing rent listings.
func (s *Snapshot) BuildingRentAvg(buildingID uint, bedrooms *int) (avg float64, n int) {
	agg, ok := s.buildings[buildingID]
	if !ok {
		return 0, 0
	}
	if bedrooms != nil {
		bed, ok := agg.bedrooms[*bedrooms]
		if !ok {
			return 0, 0
		}
		return bed.rentPrice.avg(), bed.rentPrice.count
	}
	return agg.rentPrice.avg(), agg.rentPrice.count
}

// AreaRentAvg averages rent prices across an area, optionally narrowed by
// bedroom count.
func (s *Snapshot) AreaRentAvg(area string, bedrooms *int) (avg float64, n int) {
	agg, ok := s.areas[area]
	if !ok {
		return 0, 0
	}
	if bedrooms != nil {
		bed, ok := agg.rentByBedrooms[*bedrooms]
		if !ok {
			return 0, 0
		}
		return bed.avg(), bed.count
	}
	return agg.rentPrice.avg(), agg.rentPrice.count
}

// BuildingStats exposes the building-level aggregates for metrics assembly.
type BuildingStats struct {
	AvgSalePrice    float64
	AvgROI          float64
	AvgExposureDays float64
	SaleCount       int
	RentCount       int
}

func (s *Snapshot) BuildingStats(buildingID uint) (BuildingStats, bool) {
	agg, ok := s.buildings[buildingID]
	if !ok {
		return BuildingStats{}, false
	}
	return BuildingStats{
		AvgSalePrice:    agg.salePrice.avg(),
		AvgROI:          agg.roi.avg(),
		AvgExposureDays: agg.exposure.avg(),
		SaleCount:       agg.saleCount,
		RentCount:       agg.rentCount,
	}, true
}

// BedroomStats exposes the per-bedroom aggregates within a building.
type BedroomStats struct {
	AvgSalePrice float64
	AvgRent      float64
	SaleCount    int
	RentCount    int
}

func (s *Snapshot) BedroomStats(buildingID uint, bedrooms int) (BedroomStats, bool) {
	agg, ok := s.buildings[buildingID]
	if !ok {
		return BedroomStats{}, false
	}
	bed, ok := agg.bedrooms[bedrooms]
	if !ok {
		return BedroomStats{}, false
	}
	return BedroomStats{
		AvgSalePrice: bed.salePrice.avg(),
		AvgRent:      bed.rentPrice.avg(),
		SaleCount:    bed.saleCount,
		RentCount:    bed.rentCount,
	}, true
}

// AreaAvgDaysOnMarket averages exposure days across an area, zero when the
// area has no data.
func (s *Snapshot) AreaAvgDaysOnMarket(area string) float64 {
	if agg, ok := s.areas[area]; ok {
		return agg.daysOnMarket.avg()
	}
	return 0
}

func distinctBuildingIDs(listings []*model.Listing) []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, l := range listings {
		if l.BuildingID == nil {
			continue
		}
		if _, ok := seen[*l.BuildingID]; ok {
			continue
		}
		seen[*l.BuildingID] = struct{}{}
		ids = append(ids, *l.BuildingID)
	}
	return ids
}

func distinctAreas(batch, peers []*model.Listing) []string {
	seen := make(map[string]struct{})
	var areas []string
	collect := func(listings []*model.Listing) {
		for _, l := range listings {
			if l.Building == nil || l.Building.Area == nil || *l.Building.Area == "" {
				continue
			}
			if _, ok := seen[*l.Building.Area]; ok {
				continue
			}
			seen[*l.Building.Area] = struct{}{}
			areas = append(areas, *l.Building.Area)
		}
	}
	collect(batch)
	collect(peers)
	return areas
}
