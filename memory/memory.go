package memory

import (
	"fmt"
	"time"

	"github.com/hupe1980/agenthooks/core"
	"github.com/hupe1980/agenthooks/logging"
)

// Options configures a Memory instance.
type Options struct {
	// Logger reports cleanup failures during hard teardown.
	// Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Memory is the ordered, position-addressed slot store of a single Host.
// It owns the cursor used to resolve hook calls to cells and the teardown /
// state-application / effect-execution machinery. It is not safe for
// concurrent use; the owning Host serializes access (individual state cell
// queues accept concurrent appends).
type Memory struct {
	cells  []Cell
	cursor int
	logger logging.Logger
}

// New creates an empty Memory.
func New(optFns ...func(o *Options)) *Memory {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Memory{logger: opts.Logger}
}

// Read returns the cell at the cursor, or false when no cell exists there
// yet (first-ever hook call at this position). It does not advance the
// cursor.
func (m *Memory) Read() (Cell, bool) {
	if m.cursor < len(m.cells) {
		return m.cells[m.cursor], true
	}
	return nil, false
}

// Write stores a newly constructed cell at the cursor position. Growing the
// sequence is only valid at the current tail; writing anywhere else means
// the hook call order changed between renders, which is a programming error.
func (m *Memory) Write(c Cell) {
	if m.cursor != len(m.cells) {
		panic(fmt.Sprintf("memory: write at slot %d but tail is %d (hook call order changed between renders)", m.cursor, len(m.cells)))
	}
	m.cells = append(m.cells, c)
}

// Advance moves the cursor forward by one. Every hook call advances exactly
// once, regardless of the branch taken.
func (m *Memory) Advance() { m.cursor++ }

// Rewind resets the cursor to the start without discarding cells, so the
// next convergence pass re-walks the same slots.
func (m *Memory) Rewind() { m.cursor = 0 }

// Cursor returns the current cursor position. Exposed for diagnostics.
func (m *Memory) Cursor() int { return m.cursor }

// Len returns the number of allocated slots.
func (m *Memory) Len() int { return len(m.cells) }

// Teardown performs a hard reset: every effect cell's recorded cleanup is
// invoked in slot order, then the entire cell sequence is discarded and the
// cursor reset. Cleanups run best effort: a panicking cleanup is logged and
// does not prevent the remaining cleanups from running.
func (m *Memory) Teardown() {
	for slot, c := range m.cells {
		ec, ok := c.(*EffectCell)
		if !ok || ec.Cleanup == nil {
			continue
		}
		cleanup := ec.Cleanup
		ec.Cleanup = nil
		m.runCleanup(slot, cleanup)
	}
	m.cells = nil
	m.cursor = 0
}

func (m *Memory) runCleanup(slot int, cleanup core.Cleanup) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("memory: cleanup at slot %d panicked during teardown: %v", slot, r)
		}
	}()
	cleanup()
}

// ApplyPendingStateChanges folds every state cell's pending-update queue
// into its value and clears the queues. It reports whether any cell's value
// changed. This is the sole point where queued updates take effect.
func (m *Memory) ApplyPendingStateChanges() bool {
	changed := false
	for _, c := range m.cells {
		if sc, ok := c.(*StateCell); ok {
			if sc.applyPending() {
				changed = true
			}
		}
	}
	return changed
}

// RunOutdatedEffects visits effect cells in ascending slot order and runs
// every one whose outdated flag is set: the prior cleanup first (if any),
// then the new effect, whose returned cleanup is recorded for the next
// round. Panics from effects or cleanups propagate to the caller; the Host
// catches them at the render boundary.
func (m *Memory) RunOutdatedEffects() {
	for slot, c := range m.cells {
		ec, ok := c.(*EffectCell)
		if !ok || !ec.Outdated {
			continue
		}
		if ec.Cleanup != nil {
			cleanup := ec.Cleanup
			ec.Cleanup = nil
			cleanup()
		}
		start := time.Now()
		ec.Cleanup = ec.Effect()
		ec.Outdated = false
		if al, ok := m.logger.(*logging.AgentHooksLogger); ok {
			al.LogEffectRun(slot, time.Since(start), ec.Cleanup != nil)
		}
	}
}
