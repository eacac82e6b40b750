package repository

import (
	"gorm.io/gorm"
)

type Repository struct {
	ListingRepo  ListingRepository
	BuildingRepo BuildingRepository
	MetricsRepo  MetricsRepository
	UnitOfWork   UnitOfWork
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		ListingRepo:  NewListingRepository(db),
		BuildingRepo: NewBuildingRepository(db),
		MetricsRepo:  NewMetricsRepository(db),
		UnitOfWork:   NewUnitOfWork(db),
	}
}
