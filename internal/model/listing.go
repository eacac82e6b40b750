package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TransactionSell = "sell"
	TransactionRent = "rent"
)

// Column length limits used by the import path for defensive truncation.
const (
	MaxLenExternalID    = 100
	MaxLenURL           = 500
	MaxLenTitle         = 500
	MaxLenCurrency      = 10
	MaxLenAgentName     = 200
	MaxLenAgentPhone    = 50
	MaxLenBrokerName    = 200
	MaxLenBrokerLicense = 100
	MaxLenPropertyType  = 100
	MaxLenFurnishing    = 50
	MaxLenReference     = 100
	MaxLenReraNumber    = 100
)

type Listing struct {
	ID              uint    `gorm:"primarykey"`
	ExternalID      string  `gorm:"size:100;not null;uniqueIndex"`
	URL             string  `gorm:"size:500"`
	Title           string  `gorm:"size:500"`
	DisplayAddress  string  `gorm:"type:text"`
	Bedrooms        *int
	Bathrooms       *int
	AreaSqft        *float64
	AreaSqm         *float64
	Price           *float64 `gorm:"type:numeric(15,2)"`
	PriceCurrency   string   `gorm:"size:10;default:AED"`
	TransactionKind string   `gorm:"size:10;not null;index"`
	Latitude        *float64
	Longitude       *float64
	AgentName       *string `gorm:"size:200"`
	AgentPhone      *string `gorm:"size:50"`
	BrokerName      *string `gorm:"size:200"`
	BrokerLicense   *string `gorm:"size:100"`
	PropertyType    *string `gorm:"size:100"`
	Furnishing      *string `gorm:"size:50"`
	Verified        bool
	Reference       *string `gorm:"size:100"`
	ReraNumber      *string `gorm:"size:100"`
	AddedOn         *time.Time
	Description     *string        `gorm:"type:text"`
	Features        datatypes.JSON `gorm:"type:jsonb"`
	Images          datatypes.JSON `gorm:"type:jsonb"`
	BuildingID      *uint          `gorm:"index"`
	ROI             *float64
	DaysOnMarket    *int
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`

	Building *Building       `gorm:"foreignKey:BuildingID"`
	Metrics  *ListingMetrics `gorm:"foreignKey:ListingID"`
}

func (Listing) TableName() string {
	return "listings"
}

// ListingUpdateFields is the fixed field list the import path is allowed to
// overwrite on existing rows. Building link and computed columns are owned by
// the enrichment passes and stay untouched.
var ListingUpdateFields = []string{
	"url", "title", "display_address", "bedrooms", "bathrooms",
	"area_sqft", "area_sqm", "price", "price_currency", "transaction_kind",
	"latitude", "longitude", "agent_name", "agent_phone", "broker_name",
	"broker_license", "property_type", "furnishing", "verified", "reference",
	"rera_number", "added_on", "description", "features", "images",
}

// ListingComputedFields are refreshed only by the metrics recompute pass.
var ListingComputedFields = []string{"roi", "days_on_market"}

type ListingBatchParam struct {
	MissingMetricsOnly bool
	Offset             int
	Limit              int
}

type CohortParam struct {
	BuildingID      uint
	Bedrooms        *int
	TransactionKind string
}

// CohortStats is the aggregate over a peer group. Averages are zero when the
// cohort is empty; Count disambiguates "no data" from a legitimate zero.
type CohortStats struct {
	Count           int64
	AvgPrice        float64
	AvgROI          float64
	AvgExposureDays float64
}

type RentAverageParam struct {
	BuildingID *uint
	Area       *string
	Bedrooms   *int
}

type ListListingsParam struct {
	TransactionKind string
	Area            string
	Bedrooms        *int
	MinROI          *float64
	MaxPrice        *float64
	SortBy          string
	SortDesc        bool
	Limit           int
	Offset          int
}
