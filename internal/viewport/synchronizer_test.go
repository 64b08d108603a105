package viewport

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"homescout/server/internal/models"
)

type fetchRecorder struct {
	mu    sync.Mutex
	boxes []models.Viewport
}

func (r *fetchRecorder) fetch(box models.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boxes = append(r.boxes, box)
}

func (r *fetchRecorder) calls() []models.Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Viewport(nil), r.boxes...)
}

func box(n float64) models.Viewport {
	return models.Viewport{North: n, South: n - 1, East: n + 1, West: n - 2}
}

func TestSynchronizer_DebounceCollapsesBurst(t *testing.T) {
	rec := &fetchRecorder{}
	s := NewSynchronizer(50*time.Millisecond, rec.fetch, logrus.New())
	defer s.Stop()

	// A burst of changes inside the window must produce exactly one fetch
	// with the last box.
	for i := 0; i < 10; i++ {
		s.OnViewportChange(box(float64(i)))
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	calls := rec.calls()
	assert.Len(t, calls, 1)
	assert.Equal(t, box(9), calls[0])
}

func TestSynchronizer_SeparateBurstsFetchSeparately(t *testing.T) {
	rec := &fetchRecorder{}
	s := NewSynchronizer(30*time.Millisecond, rec.fetch, logrus.New())
	defer s.Stop()

	s.OnViewportChange(box(1))
	time.Sleep(100 * time.Millisecond)
	s.OnViewportChange(box(2))
	time.Sleep(100 * time.Millisecond)

	calls := rec.calls()
	assert.Len(t, calls, 2)
	assert.Equal(t, box(1), calls[0])
	assert.Equal(t, box(2), calls[1])
}

func TestSynchronizer_StopCancelsPendingTimer(t *testing.T) {
	rec := &fetchRecorder{}
	s := NewSynchronizer(30*time.Millisecond, rec.fetch, logrus.New())

	s.OnViewportChange(box(1))
	s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.calls())

	// Changes after Stop are ignored.
	s.OnViewportChange(box(2))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.calls())
}

func TestSynchronizer_FlushFiresImmediately(t *testing.T) {
	rec := &fetchRecorder{}
	s := NewSynchronizer(time.Hour, rec.fetch, logrus.New())
	defer s.Stop()

	s.OnViewportChange(box(3))
	s.Flush()

	calls := rec.calls()
	assert.Len(t, calls, 1)
	assert.Equal(t, box(3), calls[0])
}
