package model

import "time"

// Building is a physical structure aggregating listings. The (name, address)
// pair is the identity; concurrent creators race on the unique index and the
// loser re-reads the winner's row.
type Building struct {
	ID        uint    `gorm:"primarykey"`
	Name      string  `gorm:"size:500;not null;uniqueIndex:idx_buildings_name_address"`
	Address   string  `gorm:"size:1000;not null;uniqueIndex:idx_buildings_name_address"`
	Latitude  *float64
	Longitude *float64
	Area      *string   `gorm:"size:200"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Building) TableName() string {
	return "buildings"
}
