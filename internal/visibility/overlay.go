// Package visibility implements the user-controlled "hide this listing"
// overlay. The overlay composes strictly after the predicate engine: hiding
// is never reversed by a filter change, and filter changes never un-hide a
// record. Persistence of the hidden set is owned by an injected Store.
package visibility

import (
	"sync"

	"github.com/sirupsen/logrus"

	"homescout/server/internal/models"
)

// Store persists the hidden MLS numbers between sessions. The overlay never
// clears the set itself; expiry is the store's own policy.
type Store interface {
	Load() ([]string, error)
	Save(ids []string) error
}

// Overlay is a set of MLS numbers the user has hidden. Safe for concurrent
// use by the pipeline and UI intents.
type Overlay struct {
	mu     sync.RWMutex
	hidden map[string]struct{}
	store  Store
	logger *logrus.Logger
}

// NewOverlay creates an overlay backed by the given store. A nil store keeps
// the hidden set in memory only. Load failures are logged and treated as an
// empty set; they never block the pipeline.
func NewOverlay(store Store, logger *logrus.Logger) *Overlay {
	if logger == nil {
		logger = logrus.New()
	}

	o := &Overlay{
		hidden: make(map[string]struct{}),
		store:  store,
		logger: logger,
	}

	if store != nil {
		ids, err := store.Load()
		if err != nil {
			logger.WithError(err).Warn("Failed to load hidden listings, starting empty")
			return o
		}
		for _, id := range ids {
			o.hidden[id] = struct{}{}
		}
	}

	return o
}

// Hide marks an MLS number as hidden. Hiding an already-hidden id is a no-op.
func (o *Overlay) Hide(id string) {
	if id == "" {
		return
	}

	o.mu.Lock()
	if _, already := o.hidden[id]; already {
		o.mu.Unlock()
		return
	}
	o.hidden[id] = struct{}{}
	ids := o.snapshotLocked()
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.Save(ids); err != nil {
			o.logger.WithError(err).WithField("mls_number", id).Error("Failed to persist hidden listings")
		}
	}
}

// IsVisible reports whether an MLS number has not been hidden.
func (o *Overlay) IsVisible(id string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, hidden := o.hidden[id]
	return !hidden
}

// Apply returns the records that are still visible, preserving input order.
// The input slice is not modified.
func (o *Overlay) Apply(records []models.Listing) []models.Listing {
	o.mu.RLock()
	defer o.mu.RUnlock()

	visible := make([]models.Listing, 0, len(records))
	for _, rec := range records {
		if _, hidden := o.hidden[rec.MLSNumber]; !hidden {
			visible = append(visible, rec)
		}
	}
	return visible
}

// HiddenCount returns the number of hidden MLS numbers.
func (o *Overlay) HiddenCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.hidden)
}

func (o *Overlay) snapshotLocked() []string {
	ids := make([]string, 0, len(o.hidden))
	for id := range o.hidden {
		ids = append(ids, id)
	}
	return ids
}
