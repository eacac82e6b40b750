package service

import (
	"context"

	"estate-metrics/internal/model"
	"estate-metrics/internal/repository"
)

// QueryService is the read side: listings with their precomputed metrics, and
// peer-group statistics on demand.
type QueryService struct {
	listingRepo repository.ListingRepository
	aggregator  *PeerAggregator
}

func NewQueryService(listingRepo repository.ListingRepository, aggregator *PeerAggregator) *QueryService {
	return &QueryService{
		listingRepo: listingRepo,
		aggregator:  aggregator,
	}
}

func (s *QueryService) Listings(ctx context.Context, param model.ListListingsParam) ([]*model.Listing, int64, error) {
	return s.listingRepo.List(ctx, param)
}

func (s *QueryService) CohortStats(ctx context.Context, param model.CohortParam) (*model.CohortStats, error) {
	return s.aggregator.CohortStats(ctx, param)
}
