// Package pipeline wires filter state, the predicate engine, facet
// extraction, the visibility overlay and the viewport synchronizer into the
// listing filter & view pipeline driving one listing page.
//
// Filter edits re-derive the visible subset of the last-fetched record set
// synchronously. Viewport changes are debounced and trigger a fresh fetch
// from the listings data source. Fetches are tagged with a generation
// number; completions older than the latest issued generation are discarded
// so a slow early fetch can never clobber a fresher result.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"homescout/server/internal/facets"
	"homescout/server/internal/filter"
	"homescout/server/internal/geometry"
	"homescout/server/internal/listings"
	"homescout/server/internal/metrics"
	"homescout/server/internal/models"
	"homescout/server/internal/viewport"
	"homescout/server/internal/visibility"
)

// Snapshot is what the pipeline exposes to the presentation layer after
// every reconciliation cycle. Rendering is expected to be a pure function
// of this tuple; the pipeline never reaches into rendering.
type Snapshot struct {
	VisibleRecords []models.Listing `json:"visible_records"`
	Facets         facets.FacetSet  `json:"facets"`
	Selected       string           `json:"selected"` // MLS number, "" = none
	Loading        bool             `json:"loading"`
	Error          string           `json:"error"`
}

// Config assembles a pipeline. Source is required; everything else has a
// working default.
type Config struct {
	Source   listings.Source
	Overlay  *visibility.Overlay
	Surface  filter.Surface
	Logger   *logrus.Logger
	Debounce time.Duration
	PageSize int
	// OnUpdate, when set, is called with a fresh snapshot after every
	// reconciliation cycle.
	OnUpdate func(Snapshot)
}

// Pipeline owns the page-level state: filter criteria, the last-fetched
// working set, the selection cursor and the loading/error flags. All
// mutation is serialized through its mutex; asynchronous fetch completions
// are reconciled by generation number.
type Pipeline struct {
	mu sync.Mutex

	logger   *logrus.Logger
	source   listings.Source
	overlay  *visibility.Overlay
	sync     *viewport.Synchronizer
	onUpdate func(Snapshot)
	pageSize int

	filters  filter.FilterState
	records  []models.Listing
	visible  []models.Listing
	facetSet facets.FacetSet
	selected string
	loading  bool
	lastErr  string

	issued uint64 // newest generation handed to a fetch
}

const defaultPageSize = 200

// New creates a pipeline in its Idle state with default filters. It issues
// no fetch until Refresh or a viewport change.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	overlay := cfg.Overlay
	if overlay == nil {
		overlay = visibility.NewOverlay(nil, logger)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	p := &Pipeline{
		logger:   logger,
		source:   cfg.Source,
		overlay:  overlay,
		onUpdate: cfg.OnUpdate,
		pageSize: pageSize,
		filters:  filter.Default(cfg.Surface),
	}
	p.sync = viewport.NewSynchronizer(cfg.Debounce, p.fetchForViewport, logger)
	p.reconcileLocked()
	return p
}

// Stop cancels the debounce timer. In-flight fetches run to completion and
// are discarded by the generation check if superseded.
func (p *Pipeline) Stop() {
	p.sync.Stop()
}

// Snapshot returns the current render-ready state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Refresh issues a fetch using the current filter state.
func (p *Pipeline) Refresh() {
	p.mu.Lock()
	q := p.queryLocked()
	p.mu.Unlock()
	p.startFetch(q, nil)
}

// OnViewportChange records a new map bounding box. After the debounce
// window settles, the last observed box triggers a fetch whose results are
// clipped to that box.
func (p *Pipeline) OnViewportChange(box models.Viewport) {
	p.sync.OnViewportChange(box)
}

// ApplyPatch updates the filter state and re-derives the visible subset of
// the last-fetched record set. No fetch is issued; the working set is only
// replaced by Refresh or a viewport change.
func (p *Pipeline) ApplyPatch(patch filter.Patch) {
	p.mu.Lock()
	p.filters = filter.Update(p.filters, patch)
	p.reconcileLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

// SetLocation selects a location; the location area resets per the joint
// field rule.
func (p *Pipeline) SetLocation(location string) {
	p.ApplyPatch(filter.Patch{Location: &location})
}

// SetLocationArea updates the location/area pair atomically.
func (p *Pipeline) SetLocationArea(location, area string) {
	p.ApplyPatch(filter.Patch{Location: &location, LocationArea: &area})
}

// SetPropertyType selects a property type; the sub-type resets unless the
// parent carries sub-types.
func (p *Pipeline) SetPropertyType(propertyType string) {
	p.ApplyPatch(filter.Patch{PropertyType: &propertyType})
}

// SetPriceRange sets the price band. Values are clamped to >= 0.
func (p *Pipeline) SetPriceRange(minPrice, maxPrice int) {
	p.ApplyPatch(filter.Patch{MinPrice: &minPrice, MaxPrice: &maxPrice})
}

// SetBedrooms sets the bedroom filter (5 means "5 or more").
func (p *Pipeline) SetBedrooms(bedrooms int) {
	p.ApplyPatch(filter.Patch{Bedrooms: &bedrooms})
}

// SetBathrooms sets the bathroom filter (4 means "4 or more").
func (p *Pipeline) SetBathrooms(bathrooms int) {
	p.ApplyPatch(filter.Patch{Bathrooms: &bathrooms})
}

// SetCommunity sets the community filter.
func (p *Pipeline) SetCommunity(community string) {
	p.ApplyPatch(filter.Patch{Community: &community})
}

// ToggleListingType switches the listing type on or off: selecting the
// active type returns to "all".
func (p *Pipeline) ToggleListingType(listingType string) {
	p.mu.Lock()
	next := listingType
	if strings.EqualFold(p.filters.ListingType, listingType) {
		next = filter.All
	}
	p.filters = filter.Update(p.filters, filter.Patch{ListingType: &next})
	p.reconcileLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

// HideRecord adds an MLS number to the visibility overlay. Hidden records
// stay hidden through every later filter change, including ResetAll.
func (p *Pipeline) HideRecord(id string) {
	p.overlay.Hide(id)

	p.mu.Lock()
	p.reconcileLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

// Select moves the selection cursor. Selecting a record that is not in the
// visible set clears the selection.
func (p *Pipeline) Select(id string) {
	p.mu.Lock()
	p.selected = id
	p.reconcileLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

// ResetAll restores the default filter state for the page's surface. The
// visibility overlay is not touched.
func (p *Pipeline) ResetAll() {
	p.mu.Lock()
	p.filters = filter.Reset(p.filters)
	p.reconcileLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

// Filters returns a copy of the current filter state.
func (p *Pipeline) Filters() filter.FilterState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters
}

// fetchForViewport is the synchronizer's callback: fetch with the current
// filters and clip the results to the settled box.
func (p *Pipeline) fetchForViewport(box models.Viewport) {
	p.mu.Lock()
	q := p.queryLocked()
	p.mu.Unlock()
	p.startFetch(q, &box)
}

func (p *Pipeline) startFetch(q listings.Query, clip *models.Viewport) {
	p.mu.Lock()
	p.issued++
	gen := p.issued
	p.loading = true
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)

	go func() {
		records, err := p.source.Search(context.Background(), q)
		p.complete(gen, records, err, clip)
	}()
}

// complete applies a fetch result. A result for a generation older than the
// latest issued one is dropped; the slow response lost the race and must
// not overwrite fresher state.
func (p *Pipeline) complete(gen uint64, records []models.Listing, err error, clip *models.Viewport) {
	p.mu.Lock()

	if gen < p.issued {
		latest := p.issued
		p.mu.Unlock()
		metrics.StaleFetchesDiscarded.Inc()
		p.logger.WithFields(logrus.Fields{
			"generation": gen,
			"latest":     latest,
		}).Debug("Discarding stale fetch result")
		return
	}

	p.loading = false
	if err != nil {
		// Failure clears the working set; filter and visibility state are
		// kept so the user's in-progress criteria survive.
		metrics.FetchCycles.WithLabelValues("error").Inc()
		p.logger.WithError(err).Error("Failed to fetch listings")
		p.lastErr = err.Error()
		p.records = nil
	} else {
		metrics.FetchCycles.WithLabelValues("success").Inc()
		if clip != nil {
			records = geometry.ClipToViewport(*clip, records)
		}
		p.lastErr = ""
		p.records = records
	}

	p.reconcileLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

// reconcileLocked recomputes the derived state: the predicate engine narrows
// the working set, facets are extracted from the narrowed set, the overlay
// removes hidden records, and the selection is validated against the final
// visible list. Order of surviving records follows the source order.
func (p *Pipeline) reconcileLocked() {
	filtered := make([]models.Listing, 0, len(p.records))
	for _, rec := range p.records {
		if filter.Matches(rec, p.filters) {
			filtered = append(filtered, rec)
		}
	}

	p.facetSet = facets.Extract(filtered)
	p.visible = p.overlay.Apply(filtered)

	if p.selected != "" && !p.visibleContainsLocked(p.selected) {
		p.selected = ""
	}
}

func (p *Pipeline) visibleContainsLocked(id string) bool {
	for _, rec := range p.visible {
		if rec.MLSNumber == id {
			return true
		}
	}
	return false
}

func (p *Pipeline) snapshotLocked() Snapshot {
	return Snapshot{
		VisibleRecords: append([]models.Listing(nil), p.visible...),
		Facets:         p.facetSet,
		Selected:       p.selected,
		Loading:        p.loading,
		Error:          p.lastErr,
	}
}

// queryLocked maps the filter state onto the data source's parameter bag.
func (p *Pipeline) queryLocked() listings.Query {
	fs := p.filters
	q := listings.Query{
		Status:         "A",
		ResultsPerPage: p.pageSize,
		PageNum:        1,
	}

	if isActive(fs.Location) {
		q.City = fs.Location
	}
	if isActive(fs.PropertyType) {
		q.PropertyType = fs.PropertyType
	}
	if isActive(fs.Community) {
		q.Community = fs.Community
	}

	switch strings.ToLower(fs.ListingType) {
	case "sell":
		q.Type = "Sale"
	case "rent":
		q.Type = "Lease"
	}

	q.MinPrice = fs.MinPrice
	if fs.MaxPrice < filter.PriceCap(fs.Surface) {
		q.MaxPrice = fs.MaxPrice
	}
	if fs.Bedrooms > 0 {
		q.MinBedrooms = fs.Bedrooms
	}
	if fs.Bathrooms > 0 {
		q.MinBaths = fs.Bathrooms
	}

	return q
}

func (p *Pipeline) publish(snap Snapshot) {
	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
}

func isActive(value string) bool {
	return value != "" && !strings.EqualFold(value, filter.All)
}
