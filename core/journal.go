package core

import (
	"sync"
	"time"
)

// Journal records the ordered event history of a single host. It is safe for
// concurrent access.
//
// Contract:
//   - AddEvent updates the Updated timestamp
//   - GetEvents returns a defensive copy to avoid external mutation
//   - Clone performs a deep copy of the event slice for safe divergence.
type Journal struct {
	ID      string    `json:"id"`
	Events  []Event   `json:"events"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	mu      sync.RWMutex
}

// NewJournal creates an empty journal for the given host ID.
func NewJournal(id string) *Journal {
	now := time.Now()
	return &Journal{ID: id, Events: []Event{}, Created: now, Updated: now}
}

// AddEvent appends an event to the history updating the Updated timestamp.
func (j *Journal) AddEvent(ev Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Events = append(j.Events, ev)
	j.Updated = time.Now()
}

// GetEvents returns a defensive copy of the full event slice.
func (j *Journal) GetEvents() []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	events := make([]Event, len(j.Events))
	copy(events, j.Events)
	return events
}

// Len returns the number of recorded events.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.Events)
}

// Terminal returns only the terminal events (final values, resets, errors),
// letting consumers cheaply ignore superseded intermediates.
func (j *Journal) Terminal() []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	res := make([]Event, 0, len(j.Events))
	for _, ev := range j.Events {
		if ev.IsTerminal() {
			res = append(res, ev)
		}
	}
	return res
}

// Clone returns a deep copy of the journal safe for independent mutation.
func (j *Journal) Clone() *Journal {
	j.mu.RLock()
	defer j.mu.RUnlock()
	clone := &Journal{ID: j.ID, Events: make([]Event, len(j.Events)), Created: j.Created, Updated: j.Updated}
	copy(clone.Events, j.Events)
	return clone
}

// JournalStore persists per-host event histories.
type JournalStore interface {
	Create(id string) (*Journal, error)
	Get(id string) (*Journal, error)
	AppendEvent(hostID string, event Event) error
	Delete(id string) error
}
