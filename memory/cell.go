package memory

import (
	"sync"

	"github.com/hupe1980/agenthooks/core"
)

// Cell is one persistent slot of agent memory. The closed set of variants is
// StateCell, EffectCell and MemoCell; a slot's identity is its position, not
// its variant.
type Cell interface {
	cell()
}

// StateCell holds a state value together with its queue of pending updates.
// The queue has its own lock so setters may append from any goroutine while
// a render is in flight; updates become visible only when the owning Memory
// applies pending changes.
type StateCell struct {
	// Setter caches the slot's setter so repeated renders return the same
	// reference. The concrete type lives in the host package.
	Setter any

	mu      sync.Mutex
	value   any
	pending []any
}

// NewStateCell creates a state cell seeded with the given value.
func NewStateCell(value any) *StateCell {
	return &StateCell{value: value}
}

func (c *StateCell) cell() {}

// Value returns the current state value.
func (c *StateCell) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Enqueue appends a replacement value or core.Updater to the pending queue.
// The update has no visible effect until the queue is applied.
func (c *StateCell) Enqueue(update any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, update)
}

// applyPending folds the pending queue into the value left-to-right and
// reports whether the resulting value differs from the previous one under
// core.Identical. The queue is drained before the fold runs, so a panicking
// updater is consumed rather than replayed by the next application, and the
// lock is not held while updaters execute, so an updater may itself enqueue
// further updates.
func (c *StateCell) applyPending() bool {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	prev := c.value
	c.mu.Unlock()

	if len(pending) == 0 {
		return false
	}

	next := prev
	for _, update := range pending {
		switch u := update.(type) {
		case core.Updater:
			next = u(next)
		case func(prev any) any:
			next = u(next)
		default:
			next = update
		}
	}

	c.mu.Lock()
	c.value = next
	c.mu.Unlock()
	return !core.Identical(prev, next)
}

// EffectCell tracks an effect slot: the latest effect function, its latest
// dependency list, whether it must run on the next effect pass, and the
// cleanup recorded by its most recent successful invocation.
type EffectCell struct {
	Effect   core.Effect
	Deps     core.Deps
	Outdated bool
	Cleanup  core.Cleanup
}

// NewEffectCell creates an effect cell marked outdated so the effect runs on
// the first effect pass after its declaration.
func NewEffectCell(effect core.Effect, deps core.Deps) *EffectCell {
	return &EffectCell{Effect: effect, Deps: deps, Outdated: true}
}

func (c *EffectCell) cell() {}

// MemoCell caches a computed value keyed by its dependency list.
type MemoCell struct {
	Value any
	Deps  core.Deps
}

// NewMemoCell creates a memo cell holding an already-computed value.
func NewMemoCell(value any, deps core.Deps) *MemoCell {
	return &MemoCell{Value: value, Deps: deps}
}

func (c *MemoCell) cell() {}
