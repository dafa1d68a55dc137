// Package agenthooks provides a high-level façade over the core Engine,
// enabling rapid construction of reactive agent programs built from hooks.
// Most applications interact with this package by:
//  1. Creating an AgentHooks via New() (optionally overriding the journal
//     store, engine configuration and logger)
//  2. Registering one or more agent functions
//  3. Spawning hosts and rendering them with fresh arguments
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable journal
// store and a structured logger.
package agenthooks

import (
	"github.com/hupe1980/agenthooks/core"
	"github.com/hupe1980/agenthooks/engine"
	"github.com/hupe1980/agenthooks/journal"
	"github.com/hupe1980/agenthooks/logging"
)

// Options configures the AgentHooks instance.
type Options struct {
	// Engine configuration (event channel buffering)
	EngineConfig engine.Config

	// JournalStore persists per-host event histories.
	// Defaults to an in-memory implementation if not provided.
	JournalStore core.JournalStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentHooks is the high-level façade aggregating the underlying engine.
type AgentHooks struct {
	opts   Options
	engine core.Engine
}

// New creates a new AgentHooks instance with optional overrides. Any unset
// collaborator is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *AgentHooks {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		JournalStore: journal.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.JournalStore = opts.JournalStore
		o.Logger = opts.Logger
	})

	return &AgentHooks{opts: opts, engine: e}
}

// RegisterAgent adds an agent function to the underlying engine under name.
func (a *AgentHooks) RegisterAgent(name string, agent core.Agent) {
	a.engine.Register(name, agent)
}

// Spawn creates an independent host for the named agent, returning the host
// id and a channel carrying every event the host emits.
func (a *AgentHooks) Spawn(agentName string) (string, <-chan core.Event, error) {
	return a.engine.Spawn(agentName)
}

// Render runs a synchronous render on the identified host. Results arrive
// on the host's event channel and in its journal.
func (a *AgentHooks) Render(hostID string, args ...any) error {
	return a.engine.Render(hostID, args...)
}

// RenderSync renders the identified host and returns the events the render
// emitted, in order, ending with the terminating event.
func (a *AgentHooks) RenderSync(hostID string, args ...any) ([]core.Event, error) {
	before, err := a.engine.Journal(hostID)
	if err != nil {
		return nil, err
	}
	if err := a.engine.Render(hostID, args...); err != nil {
		return nil, err
	}
	after, err := a.engine.Journal(hostID)
	if err != nil {
		return nil, err
	}
	return after[len(before):], nil
}

// Reset performs a hard reset of the identified host.
func (a *AgentHooks) Reset(hostID string) error {
	return a.engine.Reset(hostID)
}

// Release tears the identified host down and deletes its journal.
func (a *AgentHooks) Release(hostID string) error {
	return a.engine.Release(hostID)
}

// Journal returns the identified host's full event history.
func (a *AgentHooks) Journal(hostID string) ([]core.Event, error) {
	return a.engine.Journal(hostID)
}
