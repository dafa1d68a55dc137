package journal

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agenthooks/core"
)

// InMemoryStore is a volatile JournalStore implementation storing journals
// in a process local map. It is safe for concurrent access and best suited
// for tests or ephemeral demo programs. Each returned journal is cloned to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	journals map[string]*core.Journal
}

var _ core.JournalStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory journal store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{journals: make(map[string]*core.Journal)}
}

// Create forces the creation (or overwriting) of a journal with the given id.
func (s *InMemoryStore) Create(hostID string) (*core.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(hostID).Clone(), nil
}

// Get returns an existing journal (clone) or creates a new one lazily.
func (s *InMemoryStore) Get(hostID string) (*core.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.journals[hostID]; ok {
		return j.Clone(), nil
	}
	return s.createLocked(hostID).Clone(), nil
}

// AppendEvent adds an event to an existing or newly created journal.
func (s *InMemoryStore) AppendEvent(hostID string, ev core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.journals[hostID]
	if !ok {
		j = s.createLocked(hostID)
	}
	j.AddEvent(ev)
	return nil
}

// Delete removes a journal. Deleting an unknown id is an error so callers
// can detect double releases.
func (s *InMemoryStore) Delete(hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.journals[hostID]; !ok {
		return fmt.Errorf("journal: unknown host id %q", hostID)
	}
	delete(s.journals, hostID)
	return nil
}

// createLocked allocates and stores a new journal; caller must already hold
// the write lock.
func (s *InMemoryStore) createLocked(hostID string) *core.Journal {
	j := core.NewJournal(hostID)
	s.journals[hostID] = j
	return j
}
