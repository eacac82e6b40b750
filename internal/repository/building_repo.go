package repository

import (
	"context"
	"errors"

	"estate-metrics/internal/model"
	"estate-metrics/pkg/utils"

	"gorm.io/gorm"
)

type BuildingRepository interface {
	GetOrCreate(ctx context.Context, building *model.Building, opts ...utils.DBOption) (*model.Building, bool, error)
	UpdateArea(ctx context.Context, id uint, area string, opts ...utils.DBOption) error
	FindByIDs(ctx context.Context, ids []uint) ([]*model.Building, error)
	FindWithoutArea(ctx context.Context) ([]*model.Building, error)
}

type buildingRepository struct {
	db *gorm.DB
}

func NewBuildingRepository(db *gorm.DB) BuildingRepository {
	return &buildingRepository{db: db}
}

// GetOrCreate returns the building identified by (name, address), creating it
// when absent. A concurrent creation loses the race on the unique index and is
// resolved by re-reading the existing row.
func (b *buildingRepository) GetOrCreate(ctx context.Context, building *model.Building, opts ...utils.DBOption) (*model.Building, bool, error) {
	db := utils.ApplyOptions(b.db.WithContext(ctx), opts...)

	var existing model.Building
	err := db.Where("name = ? AND address = ?", building.Name, building.Address).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := db.Create(building).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the creation race, the committed row wins.
			if rerr := db.Where("name = ? AND address = ?", building.Name, building.Address).First(&existing).Error; rerr != nil {
				return nil, false, rerr
			}
			return &existing, false, nil
		}
		return nil, false, err
	}

	return building, true, nil
}

func (b *buildingRepository) UpdateArea(ctx context.Context, id uint, area string, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(b.db.WithContext(ctx), opts...)
	return db.Model(&model.Building{}).Where("id = ?", id).Update("area", area).Error
}

func (b *buildingRepository) FindByIDs(ctx context.Context, ids []uint) ([]*model.Building, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var buildings []*model.Building
	err := b.db.WithContext(ctx).Where("id IN ?", ids).Find(&buildings).Error
	if err != nil {
		return nil, err
	}
	return buildings, nil
}

func (b *buildingRepository) FindWithoutArea(ctx context.Context) ([]*model.Building, error) {
	var buildings []*model.Building
	err := b.db.WithContext(ctx).Where("area IS NULL OR area = ''").Find(&buildings).Error
	if err != nil {
		return nil, err
	}
	return buildings, nil
}
