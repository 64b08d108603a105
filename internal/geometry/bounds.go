// Package geometry converts between map viewports and orb bounds and clips
// record sets to a requested bounding box.
package geometry

import (
	"github.com/paulmach/orb"

	"homescout/server/internal/models"
)

// BoundFromViewport converts a viewport to an orb bound (lon/lat order).
func BoundFromViewport(v models.Viewport) orb.Bound {
	return orb.Bound{
		Min: orb.Point{v.West, v.South},
		Max: orb.Point{v.East, v.North},
	}
}

// ViewportContains reports whether a listing's coordinates fall inside the
// viewport. Listings without coordinates are never contained; they take part
// in non-geographic filtering but are excluded from viewport-bounded subsets.
func ViewportContains(v models.Viewport, rec models.Listing) bool {
	if !rec.HasCoordinates() {
		return false
	}
	return BoundFromViewport(v).Contains(orb.Point{*rec.Longitude, *rec.Latitude})
}

// ClipToViewport drops records outside the viewport. The backing store is
// not trusted to respect the requested box exactly, so fetched results are
// re-checked client-side. Input order is preserved.
func ClipToViewport(v models.Viewport, records []models.Listing) []models.Listing {
	clipped := make([]models.Listing, 0, len(records))
	for _, rec := range records {
		if ViewportContains(v, rec) {
			clipped = append(clipped, rec)
		}
	}
	return clipped
}

// CenterFromListings returns the center of the bound spanned by the records
// that carry coordinates. Used as a last-known-center fallback when a
// textual location cannot be geocoded. ok is false when no record has
// coordinates.
func CenterFromListings(records []models.Listing) (lat, lng float64, ok bool) {
	var bound orb.Bound
	found := false

	for _, rec := range records {
		if !rec.HasCoordinates() {
			continue
		}
		pt := orb.Point{*rec.Longitude, *rec.Latitude}
		if !found {
			bound = orb.Bound{Min: pt, Max: pt}
			found = true
			continue
		}
		bound = bound.Extend(pt)
	}

	if !found {
		return 0, 0, false
	}

	center := bound.Center()
	return center[1], center[0], true
}
