package filter

import (
	"strings"

	"homescout/server/internal/models"
)

// activeStatusCodes are board status codes that count as "on the market".
// Listing-type matching deliberately ORs these with the Sale/Lease type
// field: a record whose type field is stale can still be offered for sale
// by status. A Lease-typed record with an active status therefore matches
// "sell" as well; that looseness is kept on purpose and covered by tests.
var activeStatusCodes = []string{"A", "Active"}

// Matches reports whether a listing satisfies every non-sentinel field of a
// filter state. Predicates are independent and combined by conjunction; a
// listing missing an optional field simply fails the predicate for that
// field. Matches never panics on incomplete records.
func Matches(rec models.Listing, fs FilterState) bool {
	return matchPrice(rec, fs) &&
		matchBedrooms(rec, fs) &&
		matchBathrooms(rec, fs) &&
		matchPropertyType(rec, fs) &&
		matchListingType(rec, fs) &&
		matchLocation(rec, fs) &&
		matchAdvanced(rec, fs)
}

func matchPrice(rec models.Listing, fs FilterState) bool {
	if fs.MinPrice > 0 && rec.ListPrice < fs.MinPrice {
		return false
	}
	if fs.MaxPrice < PriceCap(fs.Surface) && rec.ListPrice > fs.MaxPrice {
		return false
	}
	return true
}

func matchBedrooms(rec models.Listing, fs FilterState) bool {
	switch {
	case fs.Bedrooms == 0:
		return true
	case fs.Bedrooms >= BedroomsAtLeast:
		return rec.Bedrooms >= BedroomsAtLeast
	default:
		return rec.Bedrooms == fs.Bedrooms
	}
}

func matchBathrooms(rec models.Listing, fs FilterState) bool {
	switch {
	case fs.Bathrooms == 0:
		return true
	case fs.Bathrooms >= BathroomsAtLeast:
		return rec.Bathrooms >= BathroomsAtLeast
	default:
		return rec.Bathrooms == fs.Bathrooms
	}
}

func matchPropertyType(rec models.Listing, fs FilterState) bool {
	if !isSet(fs.PropertyType) {
		return true
	}
	if !strings.EqualFold(rec.PropertyType, fs.PropertyType) {
		return false
	}
	if isSet(fs.SubPropertyType) && !strings.EqualFold(rec.SubPropertyType, fs.SubPropertyType) {
		return false
	}
	return true
}

func matchListingType(rec models.Listing, fs FilterState) bool {
	switch strings.ToLower(fs.ListingType) {
	case "sell":
		return strings.EqualFold(rec.Type, "Sale") || hasActiveStatus(rec.Status)
	case "rent":
		return strings.EqualFold(rec.Type, "Lease") || hasActiveStatus(rec.Status)
	default:
		return true
	}
}

func matchLocation(rec models.Listing, fs FilterState) bool {
	if isSet(fs.Location) && !containsEitherWay(rec.City, fs.Location) {
		return false
	}
	if isSet(fs.LocationArea) && !containsEitherWay(rec.Area, fs.LocationArea) {
		return false
	}
	if isSet(fs.Community) && !containsEitherWay(rec.Neighbourhood, fs.Community) {
		return false
	}
	return true
}

func matchAdvanced(rec models.Listing, fs FilterState) bool {
	if isSet(fs.UnitType) && !strings.EqualFold(rec.UnitType, fs.UnitType) {
		return false
	}
	if isSet(fs.Developer) && !strings.EqualFold(rec.Developer, fs.Developer) {
		return false
	}
	if isSet(fs.ConstructionStatus) && !strings.EqualFold(rec.ConstructionStatus, fs.ConstructionStatus) {
		return false
	}
	if isSet(fs.SellingStatus) && !strings.EqualFold(rec.SellingStatus, fs.SellingStatus) {
		return false
	}
	if isSet(fs.CompletionDate) && !strings.EqualFold(rec.CompletionDate, fs.CompletionDate) {
		return false
	}
	if fs.Storeys > 0 && rec.Storeys != fs.Storeys {
		return false
	}
	if fs.Suites > 0 && rec.Suites != fs.Suites {
		return false
	}
	return true
}

func isSet(value string) bool {
	return value != "" && !strings.EqualFold(value, All)
}

func hasActiveStatus(status string) bool {
	for _, code := range activeStatusCodes {
		if strings.EqualFold(status, code) {
			return true
		}
	}
	return false
}

// containsEitherWay is a case-insensitive substring match in both directions,
// so "Downtown" and "Downtown Toronto" match each other regardless of which
// side the filter value is on. Chosen for resilience against naming variants
// at the cost of false positives on short strings.
func containsEitherWay(recordValue, filterValue string) bool {
	if recordValue == "" {
		return false
	}
	a := strings.ToLower(recordValue)
	b := strings.ToLower(filterValue)
	return strings.Contains(a, b) || strings.Contains(b, a)
}
