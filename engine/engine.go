package engine

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agenthooks/core"
	"github.com/hupe1980/agenthooks/host"
	"github.com/hupe1980/agenthooks/journal"
	"github.com/hupe1980/agenthooks/logging"
)

// Config defines tuning parameters for the Engine's operational behavior.
type Config struct {
	// EventBufferSize sets the per-host event channel buffer size. When a
	// consumer falls behind by more than this many events, further events
	// are dropped from the channel (the journal still records them).
	EventBufferSize int
}

// DefaultConfig provides production-ready default configuration values.
var DefaultConfig = Config{
	EventBufferSize: 100,
}

// Options configures an Engine instance using the functional options pattern.
//
// Example:
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Config.EventBufferSize = 256
//	    o.Logger = myLogger
//	})
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// JournalStore persists per-host event histories.
	// Defaults to an in-memory implementation if not provided.
	JournalStore core.JournalStore

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// hostEntry pairs a spawned host with its event channel. The mutex
// serializes channel sends against the close in Release, so an emit racing
// a release drops the event instead of sending on a closed channel.
type hostEntry struct {
	host *host.Host

	mu     sync.Mutex
	closed bool
	events chan core.Event
}

// deliver forwards an event to the entry's channel without blocking. It
// reports false when the event was dropped because the channel is full or
// already shut down.
func (en *hostEntry) deliver(ev core.Event) bool {
	en.mu.Lock()
	defer en.mu.Unlock()
	if en.closed {
		return false
	}
	select {
	case en.events <- ev:
		return true
	default:
		return false
	}
}

// shutdown closes the entry's channel exactly once; later deliver calls
// drop their events.
func (en *hostEntry) shutdown() {
	en.mu.Lock()
	defer en.mu.Unlock()
	if en.closed {
		return
	}
	en.closed = true
	close(en.events)
}

// Engine orchestrates multiple hosts: it registers agent functions by name,
// spawns an independent host per Spawn call, records every emitted event in
// the host's journal and forwards it to the host's event channel.
//
// All methods are safe for concurrent use. Hosts are independent; renders on
// different hosts never block each other.
type Engine struct {
	journalStore core.JournalStore
	logger       logging.Logger
	config       Config

	mu     sync.RWMutex
	agents map[string]core.Agent
	hosts  map[string]*hostEntry
}

var _ core.Engine = (*Engine)(nil)

// New creates an Engine with sensible defaults. The in-memory journal store
// and no-op logger make it immediately usable without external dependencies.
//
// The Engine does not take ownership of a caller-provided journal store;
// callers remain responsible for its lifecycle.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:       DefaultConfig,
		JournalStore: journal.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		journalStore: opts.JournalStore,
		logger:       opts.Logger,
		config:       opts.Config,
		agents:       make(map[string]core.Agent),
		hosts:        make(map[string]*hostEntry),
	}
}

// Register adds an agent function to the engine's registry under the given
// name. An existing registration with the same name is replaced without
// warning. Registration is safe to call concurrently, but completing all
// registration before spawning hosts is recommended.
func (e *Engine) Register(name string, agent core.Agent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.agents[name] = agent
}

// Spawn creates a new host for the named agent and returns the host id
// together with a receive-only channel carrying every event the host emits.
// Each call creates an independent host with fresh memory; spawning the same
// agent name twice yields two unrelated hosts.
//
// The channel is buffered per Config.EventBufferSize and never closed by the
// engine until Release; a consumer that stops reading loses events from the
// channel but not from the journal.
func (e *Engine) Spawn(agentName string) (string, <-chan core.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	agent, ok := e.agents[agentName]
	if !ok {
		return "", nil, fmt.Errorf("engine: unknown agent %q", agentName)
	}

	hostID := core.NewID()
	entry := &hostEntry{
		events: make(chan core.Event, e.config.EventBufferSize),
	}

	listener := func(ev core.Event) {
		if err := e.journalStore.AppendEvent(hostID, ev); err != nil {
			e.logger.Error("engine: journal append failed host_id=%s err=%v", hostID, err)
		}
		if !entry.deliver(ev) {
			e.logger.Warn("engine: event dropped from channel host_id=%s type=%s", hostID, ev.Type)
		}
	}

	entry.host = host.New(agent, listener, func(o *host.Options) {
		o.ID = hostID
		o.Logger = hostLogger(e.logger, hostID)
	})

	if _, err := e.journalStore.Create(hostID); err != nil {
		entry.host.Close()
		return "", nil, fmt.Errorf("engine: create journal: %w", err)
	}

	e.hosts[hostID] = entry
	e.logger.Info("engine: host spawned host_id=%s agent=%s", hostID, agentName)

	return hostID, entry.events, nil
}

// Render runs a synchronous render on the identified host with the supplied
// arguments. Results arrive on the host's event channel and in its journal;
// the returned error only reports an unknown host id.
func (e *Engine) Render(hostID string, args ...any) error {
	entry, err := e.lookup(hostID)
	if err != nil {
		return err
	}
	entry.host.Render(args...)
	return nil
}

// Reset performs a hard reset of the identified host: all effect cleanups
// run and the next render starts from a blank slate.
func (e *Engine) Reset(hostID string) error {
	entry, err := e.lookup(hostID)
	if err != nil {
		return err
	}
	entry.host.Reset()
	return nil
}

// Release tears the identified host down, closes its event channel and
// deletes its journal. The host id is invalid afterwards.
func (e *Engine) Release(hostID string) error {
	e.mu.Lock()
	entry, ok := e.hosts[hostID]
	if ok {
		delete(e.hosts, hostID)
	}
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("engine: unknown host id %q", hostID)
	}

	entry.host.Reset()
	entry.host.Close()
	entry.shutdown()

	if err := e.journalStore.Delete(hostID); err != nil {
		return fmt.Errorf("engine: delete journal: %w", err)
	}

	e.logger.Info("engine: host released host_id=%s", hostID)
	return nil
}

// Journal returns the identified host's full event history in emission
// order, including events a slow consumer missed on the channel.
func (e *Engine) Journal(hostID string) ([]core.Event, error) {
	if _, err := e.lookup(hostID); err != nil {
		return nil, err
	}
	j, err := e.journalStore.Get(hostID)
	if err != nil {
		return nil, fmt.Errorf("engine: get journal: %w", err)
	}
	return j.GetEvents(), nil
}

// hostLogger scopes loggers that support it to the spawned host; plain
// loggers are passed through unchanged.
func hostLogger(l logging.Logger, hostID string) logging.Logger {
	if hl, ok := l.(*logging.AgentHooksLogger); ok {
		return hl.WithComponent("host").WithHost(hostID)
	}
	return l
}

func (e *Engine) lookup(hostID string) (*hostEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.hosts[hostID]
	if !ok {
		return nil, fmt.Errorf("engine: unknown host id %q", hostID)
	}
	return entry, nil
}
