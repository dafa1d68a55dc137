package testutil

import (
	"sync"
	"time"

	"github.com/hupe1980/agenthooks/core"
)

// Recorder is a core.Listener that captures every emitted event for later
// inspection. It is safe for concurrent access, so it can observe
// asynchronous renders delivered from a scheduler goroutine.
//
// Example:
//
//	rec := testutil.NewRecorder()
//	h := host.New(agent, rec.Listen)
//	h.Render("hello")
//	values := rec.Values()
type Recorder struct {
	mu     sync.Mutex
	events []core.Event
	wakeup chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{wakeup: make(chan struct{}, 1)}
}

// Listen is the core.Listener to hand to a Host or engine.
func (r *Recorder) Listen(ev core.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.wakeup <- struct{}{}:
	default:
	}
}

// Events returns a copy of all captured events in emission order.
func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]core.Event, len(r.events))
	copy(events, r.events)
	return events
}

// Len returns the number of captured events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Values returns the Value field of every captured value event, intermediate
// and final, in emission order.
func (r *Recorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var values []any
	for _, ev := range r.events {
		if ev.Type == core.EventTypeValue {
			values = append(values, ev.Value)
		}
	}
	return values
}

// Types returns the event type sequence in emission order.
func (r *Recorder) Types() []core.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]core.EventType, len(r.events))
	for i, ev := range r.events {
		types[i] = ev.Type
	}
	return types
}

// Last returns the most recently captured event; ok is false when nothing
// has been captured yet.
func (r *Recorder) Last() (core.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return core.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Clear discards all captured events.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// WaitFor blocks until at least n events have been captured or the timeout
// elapses. It reports whether the threshold was reached.
func (r *Recorder) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if r.Len() >= n {
			return true
		}
		select {
		case <-r.wakeup:
		case <-deadline:
			return r.Len() >= n
		}
	}
}
