package core

// Engine coordinates hosts and event delivery.
//
// A concrete implementation is responsible for:
//   - Registering available agents (by name) via Register
//   - Spawning hosts (Spawn) returning an event channel for the host's stream
//   - Driving renders / resets on spawned hosts
//   - Recording every emitted event in a journal
//
// Implementations SHOULD:
//   - Guarantee per-host ordering of journaled events
//   - Keep the event channel open for the host's lifetime (asynchronous
//     renders keep producing events after Render returns)
//   - Close the channel and release resources on Release
type Engine interface {
	// Register makes an agent available for later spawning by name.
	// Registering an existing name replaces the previous agent.
	Register(name string, agent Agent)

	// Spawn creates a host for a registered agent and returns the host ID
	// together with the channel carrying the host's event stream.
	Spawn(agentName string) (string, <-chan Event, error)

	// Render supplies fresh arguments and runs the host's render procedure
	// to completion. Results arrive on the event channel and in the journal.
	Render(hostID string, args ...any) error

	// Reset discards the host's memory, runs outstanding cleanups and emits
	// a reset event.
	Reset(hostID string) error

	// Release resets the host, stops its scheduler, closes its event channel
	// and removes it from the engine.
	Release(hostID string) error

	// Journal returns the recorded event history of a host.
	Journal(hostID string) ([]Event, error)
}
