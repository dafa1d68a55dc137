package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType discriminates the records delivered to a Host's listener.
type EventType string

const (
	// EventTypeValue reports a value produced by an agent invocation.
	EventTypeValue EventType = "value"
	// EventTypeReset reports a hard reset; the host's memory was discarded.
	EventTypeReset EventType = "reset"
	// EventTypeError reports a failure recovered at the host boundary.
	EventTypeError EventType = "error"
)

// Event is the unit of communication between a Host and its listener. After
// emission it should be treated as immutable. It captures:
//   - Correlation (ID, HostID)
//   - The discriminator (Type)
//   - The produced value or recovered failure
//   - Whether it was produced by an asynchronous (out-of-render) trigger
//   - Whether the value was superseded within the same render (Intermediate)
//   - High precision UTC timestamp
//
// Value and Error are mutually exclusive; both are nil for reset events.
type Event struct {
	ID           string    `json:"id"`
	HostID       string    `json:"host_id,omitempty"`
	Type         EventType `json:"type"`
	Value        any       `json:"value,omitempty"`
	Error        any       `json:"error,omitempty"`
	Async        bool      `json:"async"`
	Intermediate bool      `json:"intermediate"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewEvent creates a bare event of the given type bound to a host.
// Prefer the typed constructors below.
func NewEvent(hostID string, typ EventType) Event {
	return Event{
		ID:        NewID(),
		HostID:    hostID,
		Type:      typ,
		Timestamp: time.Now().UTC(),
	}
}

// NewValueEvent constructs a value event. Intermediate marks values that were
// superseded by a later convergence pass of the same render.
func NewValueEvent(hostID string, value any, async, intermediate bool) Event {
	e := NewEvent(hostID, EventTypeValue)
	e.Value = value
	e.Async = async
	e.Intermediate = intermediate
	return e
}

// NewResetEvent constructs a reset event.
func NewResetEvent(hostID string) Event {
	return NewEvent(hostID, EventTypeReset)
}

// NewErrorEvent constructs an error event carrying the value recovered at the
// host boundary (typically the panic value of a failing agent or effect).
func NewErrorEvent(hostID string, failure any, async bool) Event {
	e := NewEvent(hostID, EventTypeError)
	e.Error = failure
	e.Async = async
	return e
}

// NewID generates a new unique identifier for events and hosts.
//
// Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }

// IsTerminal reports whether this event concludes a render pass sequence:
// a non-intermediate value, a reset, or an error.
func (e Event) IsTerminal() bool {
	return e.Type != EventTypeValue || !e.Intermediate
}

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
// Useful for metrics & numeric serialization paths.
func (e Event) UnixSeconds() float64 { return float64(e.Timestamp.UnixNano()) / 1e9 }
