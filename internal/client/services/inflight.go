package services

import (
	"errors"
	"sync"
)

// ErrActionPending is returned when a one-shot action is requested for an
// item that already has one in flight.
var ErrActionPending = errors.New("another action is pending for this item")

// Tracker records which per-item one-shot actions (activate, deactivate,
// delete, adjust) are currently in flight. Tracking by item id keeps
// concurrent actions on different items independent: one item's pending
// action never blocks or masquerades as another's.
type Tracker struct {
	mu     sync.Mutex
	active map[int64]string
}

func NewTracker() *Tracker {
	return &Tracker{active: make(map[int64]string)}
}

// Begin marks an action in flight for id. Returns false when the item is
// already busy.
func (t *Tracker) Begin(id int64, action string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.active[id]; busy {
		return false
	}
	t.active[id] = action
	return true
}

// End clears the in-flight mark for id.
func (t *Tracker) End(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, id)
}

// Pending returns the in-flight action for id, if any.
func (t *Tracker) Pending(id int64) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	action, ok := t.active[id]
	return action, ok
}
