// Package filter holds the immutable filter state for a listing page and the
// predicate engine that tests listings against it. Everything here is pure:
// callers own persistence and re-rendering.
package filter

import "strings"

// Sentinel values. A field holding its sentinel means "do not filter on this
// field"; an all-sentinel state excludes nothing.
const (
	All = "all"

	// MaxPriceResale and MaxPricePreConstruction are the per-surface upper
	// price caps. A MaxPrice at or above the surface cap is treated as unset.
	MaxPriceResale          = 1_000_000
	MaxPricePreConstruction = 2_000_000

	// BedroomsAtLeast and BathroomsAtLeast are the "N+" sentinels: a filter
	// value at or above them means "at least N" rather than an exact match.
	BedroomsAtLeast  = 5
	BathroomsAtLeast = 4
)

// Surface identifies which listing page variant the state belongs to. The
// surfaces differ only in their default price band.
type Surface int

const (
	SurfaceResale Surface = iota
	SurfacePreConstruction
)

// propertyTypesWithSubTypes are the parent types for which a sub-type
// selection is meaningful. Selecting any other parent resets the sub-type.
var propertyTypesWithSubTypes = []string{"Houses", "Condos"}

// FilterState is one record of all active filter criteria. It is replaced
// wholesale on every update; consumers never observe partial mutation.
type FilterState struct {
	Surface         Surface `json:"surface"`
	Location        string  `json:"location"`
	LocationArea    string  `json:"location_area"`
	MinPrice        int     `json:"min_price"`
	MaxPrice        int     `json:"max_price"`
	Bedrooms        int     `json:"bedrooms"`
	Bathrooms       int     `json:"bathrooms"`
	PropertyType    string  `json:"property_type"`
	SubPropertyType string  `json:"sub_property_type"`
	ListingType     string  `json:"listing_type"` // "all", "sell" or "rent"
	Community       string  `json:"community"`

	// Advanced fields, used on the pre-construction surface.
	UnitType           string `json:"unit_type"`
	Developer          string `json:"developer"`
	ConstructionStatus string `json:"construction_status"`
	SellingStatus      string `json:"selling_status"`
	CompletionDate     string `json:"completion_date"`
	Storeys            int    `json:"storeys"`
	Suites             int    `json:"suites"`
}

// Patch is a partial update to a FilterState. Each recognised filter field
// has exactly one typed slot here; unknown keys cannot be expressed, so they
// are rejected at compile time rather than dispatched at runtime.
type Patch struct {
	Location        *string
	LocationArea    *string
	MinPrice        *int
	MaxPrice        *int
	Bedrooms        *int
	Bathrooms       *int
	PropertyType    *string
	SubPropertyType *string
	ListingType     *string
	Community       *string

	UnitType           *string
	Developer          *string
	ConstructionStatus *string
	SellingStatus      *string
	CompletionDate     *string
	Storeys            *int
	Suites             *int
}

// Default returns the documented default state for a surface: location "all",
// price band [0, surface cap], bedrooms/bathrooms 0, every classification
// field "all".
func Default(surface Surface) FilterState {
	return FilterState{
		Surface:            surface,
		Location:           All,
		LocationArea:       All,
		MinPrice:           0,
		MaxPrice:           PriceCap(surface),
		Bedrooms:           0,
		Bathrooms:          0,
		PropertyType:       All,
		SubPropertyType:    All,
		ListingType:        All,
		Community:          All,
		UnitType:           All,
		Developer:          All,
		ConstructionStatus: All,
		SellingStatus:      All,
		CompletionDate:     All,
		Storeys:            0,
		Suites:             0,
	}
}

// PriceCap returns the upper price bound that counts as "unset" for a surface.
func PriceCap(surface Surface) int {
	if surface == SurfacePreConstruction {
		return MaxPricePreConstruction
	}
	return MaxPriceResale
}

// Update applies a patch to a state and returns the resulting state. The
// input is never modified. Joint fields are special-cased:
//   - setting Location without LocationArea in the same patch resets the
//     area to "all"; supplying both updates the pair atomically,
//   - setting PropertyType to a parent without sub-types resets
//     SubPropertyType to "all",
//   - numeric fields are clamped to >= 0 on write.
func Update(current FilterState, patch Patch) FilterState {
	next := current

	if patch.Location != nil {
		next.Location = *patch.Location
		if patch.LocationArea == nil {
			next.LocationArea = All
		}
	}
	if patch.LocationArea != nil {
		next.LocationArea = *patch.LocationArea
	}

	if patch.PropertyType != nil {
		next.PropertyType = *patch.PropertyType
		if !HasSubTypes(next.PropertyType) {
			next.SubPropertyType = All
		}
	}
	if patch.SubPropertyType != nil && HasSubTypes(next.PropertyType) {
		next.SubPropertyType = *patch.SubPropertyType
	}

	if patch.MinPrice != nil {
		next.MinPrice = clampNonNegative(*patch.MinPrice)
	}
	if patch.MaxPrice != nil {
		next.MaxPrice = clampNonNegative(*patch.MaxPrice)
	}
	if patch.Bedrooms != nil {
		next.Bedrooms = clampNonNegative(*patch.Bedrooms)
	}
	if patch.Bathrooms != nil {
		next.Bathrooms = clampNonNegative(*patch.Bathrooms)
	}
	if patch.Storeys != nil {
		next.Storeys = clampNonNegative(*patch.Storeys)
	}
	if patch.Suites != nil {
		next.Suites = clampNonNegative(*patch.Suites)
	}

	if patch.ListingType != nil {
		next.ListingType = *patch.ListingType
	}
	if patch.Community != nil {
		next.Community = *patch.Community
	}
	if patch.UnitType != nil {
		next.UnitType = *patch.UnitType
	}
	if patch.Developer != nil {
		next.Developer = *patch.Developer
	}
	if patch.ConstructionStatus != nil {
		next.ConstructionStatus = *patch.ConstructionStatus
	}
	if patch.SellingStatus != nil {
		next.SellingStatus = *patch.SellingStatus
	}
	if patch.CompletionDate != nil {
		next.CompletionDate = *patch.CompletionDate
	}

	return next
}

// Reset returns the default state for the same surface as the current state.
func Reset(current FilterState) FilterState {
	return Default(current.Surface)
}

// HasSubTypes reports whether a parent property type carries sub-types.
// The comparison is case-insensitive since different page surfaces send
// different casings.
func HasSubTypes(propertyType string) bool {
	for _, parent := range propertyTypesWithSubTypes {
		if strings.EqualFold(parent, propertyType) {
			return true
		}
	}
	return false
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
