// Package viewport reconciles the map bounding box with the query sent to
// the listings data source. Rapid viewport changes (drag-to-pan bursts) are
// debounced so only the last observed box triggers a fetch.
package viewport

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"homescout/server/internal/models"
)

// DefaultDebounce is the quiet window a viewport burst must settle for
// before a fetch is issued.
const DefaultDebounce = 500 * time.Millisecond

// FetchFunc is invoked with the last box observed in a debounce window.
type FetchFunc func(box models.Viewport)

// Synchronizer debounces viewport changes. A timer scheduled for an earlier
// box is cancelled when a newer change arrives, so a superseded box never
// triggers a fetch. The synchronizer does not cancel fetches already in
// flight; stale completions are discarded downstream by generation number.
type Synchronizer struct {
	mu      sync.Mutex
	timer   *time.Timer
	latest  models.Viewport
	delay   time.Duration
	fetch   FetchFunc
	logger  *logrus.Logger
	stopped bool
}

// NewSynchronizer creates a synchronizer firing fetch after delay of quiet.
// A non-positive delay falls back to DefaultDebounce.
func NewSynchronizer(delay time.Duration, fetch FetchFunc, logger *logrus.Logger) *Synchronizer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Synchronizer{
		delay:  delay,
		fetch:  fetch,
		logger: logger,
	}
}

// OnViewportChange records the new box and restarts the debounce timer.
func (s *Synchronizer) OnViewportChange(box models.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.latest = box
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Flush fires immediately with the latest box, bypassing the debounce
// window. Used for explicit "search this area" actions.
func (s *Synchronizer) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	box := s.latest
	stopped := s.stopped
	s.mu.Unlock()

	if !stopped {
		s.fetchBox(box)
	}
}

// Stop cancels any pending timer. Further viewport changes are ignored.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Synchronizer) fire() {
	s.mu.Lock()
	box := s.latest
	stopped := s.stopped
	s.timer = nil
	s.mu.Unlock()

	if stopped {
		return
	}
	s.fetchBox(box)
}

func (s *Synchronizer) fetchBox(box models.Viewport) {
	s.logger.WithFields(logrus.Fields{
		"north": box.North,
		"south": box.South,
		"east":  box.East,
		"west":  box.West,
	}).Debug("Viewport settled, issuing fetch")
	s.fetch(box)
}
