// Package listings defines the data source consumed by the filter pipeline:
// a query interface accepting a flat parameter bag and returning listing
// records. The pipeline treats a Source as an opaque remote call: timeouts,
// retries and pagination beyond a single page are not its responsibility.
package listings

import (
	"context"

	"homescout/server/internal/models"
)

// Query is the parameter bag for one fetch cycle. Zero values mean "no
// constraint" for strings and numeric minimums; ResultsPerPage and PageNum
// default server-side when zero.
type Query struct {
	Status         string `form:"status" json:"status"`
	Type           string `form:"type" json:"type"`
	City           string `form:"city" json:"city"`
	PropertyType   string `form:"propertyType" json:"propertyType"`
	Community      string `form:"community" json:"community"`
	MinPrice       int    `form:"minPrice" json:"minPrice"`
	MaxPrice       int    `form:"maxPrice" json:"maxPrice"`
	MinBedrooms    int    `form:"minBedrooms" json:"minBedrooms"`
	MinBaths       int    `form:"minBaths" json:"minBaths"`
	ResultsPerPage int    `form:"resultsPerPage" json:"resultsPerPage"`
	PageNum        int    `form:"pageNum" json:"pageNum"`
}

// Source returns listing records for a query. Implementations must be safe
// for concurrent use; the pipeline may have more than one fetch in flight.
type Source interface {
	Search(ctx context.Context, q Query) ([]models.Listing, error)
}
