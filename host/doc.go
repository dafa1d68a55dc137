// Package host implements the render orchestration for a single agent: the
// Host owns the agent's slot memory, drives the multi-pass convergence loop,
// batches state updates and delivers events to the host's listener.
//
// The hook entry points (UseState, UseEffect, UseMemo, UseCallback, UseRef)
// are free functions that resolve the currently active Host through a
// single-slot register held for exactly one agent invocation. They may only
// be called from inside the agent function, on the goroutine invoking it;
// calling a hook anywhere else panics with ErrNoActiveHost.
//
// Each Host is an independent, single-threaded state machine. Renders,
// resets and asynchronous flushes are serialized by the host's mutex; state
// setters may be called from any goroutine and defer their re-render through
// the host's scheduler, so a deferred flush can never re-enter a render
// procedure already on the stack.
package host
