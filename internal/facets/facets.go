// Package facets derives displayable summaries (distinct community lists,
// per-city counts) from a working record set. A FacetSet is a pure function
// of its input and is recomputed after every filter or fetch cycle; it is
// never cached across record-set changes.
package facets

import (
	"sort"

	"homescout/server/internal/models"
)

// DefaultTopCities is the number of city facets shown in the browse menus.
const DefaultTopCities = 12

// FacetSet holds the derived facet values for one record set.
type FacetSet struct {
	// Communities is the sorted distinct list of neighbourhood names.
	Communities []string `json:"communities"`
	// CommunityCounts maps a neighbourhood name to its listing count.
	CommunityCounts map[string]int `json:"community_counts"`
	// CityCounts maps a city name to its listing count.
	CityCounts map[string]int `json:"city_counts"`
}

// Extract computes the facet set for a record set in a single pass. Records
// with an empty community or city field contribute nothing to that facet.
func Extract(records []models.Listing) FacetSet {
	fs := FacetSet{
		CommunityCounts: make(map[string]int),
		CityCounts:      make(map[string]int),
	}

	for _, rec := range records {
		if rec.Neighbourhood != "" {
			fs.CommunityCounts[rec.Neighbourhood]++
		}
		if rec.City != "" {
			fs.CityCounts[rec.City]++
		}
	}

	fs.Communities = make([]string, 0, len(fs.CommunityCounts))
	for community := range fs.CommunityCounts {
		fs.Communities = append(fs.Communities, community)
	}
	sort.Strings(fs.Communities)

	return fs
}

// TopCities returns up to n city names ordered by listing count, descending,
// with ties broken alphabetically.
func (fs FacetSet) TopCities(n int) []string {
	cities := make([]string, 0, len(fs.CityCounts))
	for city := range fs.CityCounts {
		cities = append(cities, city)
	}

	sort.Slice(cities, func(i, j int) bool {
		ci, cj := fs.CityCounts[cities[i]], fs.CityCounts[cities[j]]
		if ci != cj {
			return ci > cj
		}
		return cities[i] < cities[j]
	})

	if len(cities) > n {
		cities = cities[:n]
	}
	return cities
}
