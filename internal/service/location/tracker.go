// internal/service/location/tracker.go

package location

import (
	"sync"

	"souffle/internal/domain/geo"
)

// Tracker holds the last known user position. The position is pushed by the
// location endpoint and read by reveal checks, ticket placement and the
// ambient generator. Current returns nil until the first update arrives.
type Tracker struct {
	mu      sync.RWMutex
	current *geo.Location
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

// Set records a new position
func (t *Tracker) Set(loc geo.Location) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = &loc
}

// Current returns a copy of the last known position, or nil if none was
// ever recorded.
func (t *Tracker) Current() *geo.Location {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.current == nil {
		return nil
	}
	loc := *t.current
	return &loc
}
