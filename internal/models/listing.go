package models

import "time"

// Listing is one property record as returned by the listings data source.
// MLSNumber is the stable identity used for reconciliation across fetches;
// records are never mutated in place, only replaced wholesale on refetch.
type Listing struct {
	MLSNumber       string    `json:"mls_number" gorm:"column:mls_number;uniqueIndex"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Area            string    `json:"area"`
	Neighbourhood   string    `json:"neighbourhood"`
	Type            string    `json:"type"`   // "Sale" or "Lease"
	Status          string    `json:"status"` // board status code, "A" = active
	PropertyType    string    `json:"property_type"`
	SubPropertyType string    `json:"sub_property_type"`
	ListPrice       int       `json:"list_price"`
	Bedrooms        int       `json:"bedrooms"`
	Bathrooms       int       `json:"bathrooms"`
	SquareFeetMin   *int      `json:"square_feet_min"`
	SquareFeetMax   *int      `json:"square_feet_max"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	ListedAt        time.Time `json:"listed_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Pre-construction fields; empty for resale listings.
	Developer          string `json:"developer,omitempty"`
	ConstructionStatus string `json:"construction_status,omitempty"`
	SellingStatus      string `json:"selling_status,omitempty"`
	CompletionDate     string `json:"completion_date,omitempty"`
	UnitType           string `json:"unit_type,omitempty"`
	Storeys            int    `json:"storeys,omitempty"`
	Suites             int    `json:"suites,omitempty"`
}

// TableName keeps the gorm upsert path and the hand-written SQL on the same table.
func (Listing) TableName() string {
	return "listings"
}

// HasCoordinates reports whether the listing can participate in
// viewport-bounded queries. Listings without coordinates still take part
// in non-geographic filtering.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Viewport is the geographic bounding box currently shown on the map.
type Viewport struct {
	North float64 `json:"north" form:"north"`
	South float64 `json:"south" form:"south"`
	East  float64 `json:"east" form:"east"`
	West  float64 `json:"west" form:"west"`
}

// MarketStats summarises listings for the market-trend charts.
type MarketStats struct {
	TotalListings   int     `json:"total_listings"`
	TotalSale       int     `json:"total_sale"`
	TotalLease      int     `json:"total_lease"`
	AveragePrice    float64 `json:"average_price"`
	AvgPricePerSqft float64 `json:"avg_price_per_sqft"`
}

// CommunityStats is one row of the per-community breakdown for a city.
type CommunityStats struct {
	Community    string  `json:"community"`
	ListingCount int     `json:"listing_count"`
	AveragePrice float64 `json:"average_price"`
}

// Region groups sub-areas under a browsable parent location, e.g. the
// Greater Toronto Area with its member cities.
type Region struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Areas []string `json:"areas"`
}
