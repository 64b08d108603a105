package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"homescout/server/internal/models"
)

func sampleListing() models.Listing {
	return models.Listing{
		MLSNumber:       "W1234567",
		Address:         "123 King St W",
		City:            "Toronto",
		Area:            "Downtown Toronto",
		Neighbourhood:   "Liberty Village",
		Type:            "Sale",
		Status:          "A",
		PropertyType:    "Condos",
		SubPropertyType: "Loft",
		ListPrice:       650_000,
		Bedrooms:        2,
		Bathrooms:       2,
	}
}

func TestMatches_SentinelStateExcludesNothing(t *testing.T) {
	fs := Default(SurfaceResale)

	listings := []models.Listing{
		sampleListing(),
		{MLSNumber: "X0000001"}, // everything else missing
		{MLSNumber: "X0000002", Type: "Lease", Status: "U", ListPrice: 3_200},
	}
	for _, rec := range listings {
		assert.True(t, Matches(rec, fs), "all-default state must match %s", rec.MLSNumber)
	}
}

func TestMatches_PriceBand(t *testing.T) {
	rec := sampleListing()

	tests := []struct {
		name     string
		min, max int
		expected bool
	}{
		{name: "Inside band", min: 500_000, max: 700_000, expected: true},
		{name: "Below min", min: 700_000, max: MaxPriceResale, expected: false},
		{name: "Above max", min: 0, max: 600_000, expected: false},
		{name: "Max at cap is unset", min: 0, max: MaxPriceResale, expected: true},
		{name: "Exact price on both bounds", min: 650_000, max: 650_000, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := Default(SurfaceResale)
			fs.MinPrice = tt.min
			fs.MaxPrice = tt.max
			assert.Equal(t, tt.expected, Matches(rec, fs))
		})
	}
}

func TestMatches_Bedrooms(t *testing.T) {
	fs := Default(SurfaceResale)

	fs.Bedrooms = 2
	assert.True(t, Matches(sampleListing(), fs))

	fs.Bedrooms = 3
	assert.False(t, Matches(sampleListing(), fs), "below the N+ sentinel the match is exact")

	fs.Bedrooms = BedroomsAtLeast
	big := sampleListing()
	big.Bedrooms = 7
	assert.True(t, Matches(big, fs), "5 means 5 or more")
	assert.False(t, Matches(sampleListing(), fs))
}

func TestMatches_Bathrooms(t *testing.T) {
	fs := Default(SurfaceResale)

	fs.Bathrooms = BathroomsAtLeast
	rec := sampleListing()
	rec.Bathrooms = 5
	assert.True(t, Matches(rec, fs))

	rec.Bathrooms = 3
	assert.False(t, Matches(rec, fs))
}

func TestMatches_PropertyType(t *testing.T) {
	fs := Default(SurfaceResale)
	fs.PropertyType = "condos" // case-insensitive
	assert.True(t, Matches(sampleListing(), fs))

	fs.SubPropertyType = "Loft"
	assert.True(t, Matches(sampleListing(), fs))

	fs.SubPropertyType = "Penthouse"
	assert.False(t, Matches(sampleListing(), fs), "both parent and sub-type must match")

	fs.PropertyType = "Houses"
	fs.SubPropertyType = All
	assert.False(t, Matches(sampleListing(), fs))
}

func TestMatches_ListingType(t *testing.T) {
	fs := Default(SurfaceResale)

	sale := sampleListing()
	lease := sampleListing()
	lease.Type = "Lease"

	fs.ListingType = "sell"
	assert.True(t, Matches(sale, fs))
	// The active-status OR: a Lease-typed record with status "A" still
	// matches "sell". Documented policy, not an accident.
	assert.True(t, Matches(lease, fs))

	staleLease := lease
	staleLease.Status = "U"
	assert.False(t, Matches(staleLease, fs))

	fs.ListingType = "rent"
	assert.True(t, Matches(lease, fs))
	staleSale := sale
	staleSale.Status = "U"
	assert.False(t, Matches(staleSale, fs))
}

func TestMatches_LocationContainsEitherWay(t *testing.T) {
	tests := []struct {
		name     string
		location string
		expected bool
	}{
		{name: "Exact", location: "Toronto", expected: true},
		{name: "Filter is substring", location: "Toron", expected: true},
		{name: "Record is substring", location: "Toronto East", expected: true},
		{name: "Case-insensitive", location: "toronto", expected: true},
		{name: "No overlap", location: "Ottawa", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := Default(SurfaceResale)
			fs.Location = tt.location
			assert.Equal(t, tt.expected, Matches(sampleListing(), fs))
		})
	}
}

func TestMatches_MissingFieldFailsPredicate(t *testing.T) {
	rec := models.Listing{MLSNumber: "X0000001", ListPrice: 500_000}

	fs := Default(SurfaceResale)
	fs.Community = "Liberty Village"
	assert.False(t, Matches(rec, fs), "a record without a neighbourhood is non-matching, not skipped")

	fs = Default(SurfaceResale)
	fs.Developer = "Example Homes"
	assert.False(t, Matches(rec, fs))
}

// Each non-sentinel field must behave exactly like its single-field
// predicate when it is the only active field.
func TestMatches_ConjunctionOfIndependentPredicates(t *testing.T) {
	rec := sampleListing()

	singles := []struct {
		name     string
		patch    Patch
		expected bool
	}{
		{name: "Location only", patch: Patch{Location: strPtr("Toronto")}, expected: true},
		{name: "Community only", patch: Patch{Community: strPtr("Annex")}, expected: false},
		{name: "MinPrice only", patch: Patch{MinPrice: intPtr(700_000)}, expected: false},
		{name: "Bedrooms only", patch: Patch{Bedrooms: intPtr(2)}, expected: true},
		{name: "ListingType only", patch: Patch{ListingType: strPtr("rent")}, expected: true}, // active status
	}

	conjunction := Default(SurfaceResale)
	expectedAll := true
	for _, single := range singles {
		fs := Update(Default(SurfaceResale), single.patch)
		assert.Equal(t, single.expected, Matches(rec, fs), single.name)

		conjunction = Update(conjunction, single.patch)
		expectedAll = expectedAll && single.expected
	}

	assert.Equal(t, expectedAll, Matches(rec, conjunction),
		"combined state must equal the AND of the single-field results")
}
