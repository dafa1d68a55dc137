package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agenthooks/core"
	"github.com/hupe1980/agenthooks/memory"
)

// ErrNoActiveHost is the panic value raised when a hook is called while no
// agent invocation is in progress. This indicates a programming error, not a
// runtime condition, so it is raised immediately instead of being funneled
// through the event listener.
var ErrNoActiveHost = errors.New("agenthooks: hook called outside an active agent invocation")

// The active-host register: a single slot set for the duration of exactly
// one agent invocation. The mutex is held across the invocation, so agent
// invocations are serialized process-wide and the register is only ever read
// by the goroutine that owns the lock.
var (
	activeMu sync.Mutex
	active   *Host
)

// invokeAgent runs the agent with the host installed in the register. The
// register is cleared on every exit path, including panics.
func (h *Host) invokeAgent() any {
	activeMu.Lock()
	active = h
	defer func() {
		active = nil
		activeMu.Unlock()
	}()
	return h.agent(h.args...)
}

// current resolves the active host. Only meaningful on the goroutine
// currently running an agent invocation.
func current() *Host {
	h := active
	if h == nil {
		panic(ErrNoActiveHost)
	}
	return h
}

// StateSetter queues updates for one state slot. Its identity is stable: the
// same pointer is returned for a slot across all renders until a hard reset.
// A StateSetter may be called from any goroutine, during or after a render.
type StateSetter struct {
	host *Host
	cell *memory.StateCell
}

// Set appends a replacement value or a core.Updater to the slot's pending
// queue and defers a flush through the host's scheduler. Updates made during
// a render are drained by that render's own convergence loop, leaving the
// deferred flush a no-op; updates made outside a render coalesce into a
// single asynchronous re-render.
func (s *StateSetter) Set(update any) {
	s.cell.Enqueue(update)
	s.host.scheduleFlush()
}

// UseState returns the state value at the current slot together with the
// slot's setter. On the first call at this position the slot is created from
// initial; if initial is a core.Initializer (func() any) it is invoked once
// to produce the starting value.
func UseState(initial any) (any, *StateSetter) {
	h := current()
	defer h.memory.Advance()

	if c, ok := h.memory.Read(); ok {
		sc := asStateCell(h, c)
		return sc.Value(), sc.Setter.(*StateSetter)
	}

	value := initial
	if init, ok := initial.(core.Initializer); ok {
		value = init()
	}

	sc := memory.NewStateCell(value)
	setter := &StateSetter{host: h, cell: sc}
	sc.Setter = setter
	h.memory.Write(sc)
	return value, setter
}

// UseEffect schedules effect to run after the current render's state has
// converged. On subsequent renders the effect re-runs iff deps is nil, deps
// differs from the previously stored list, or the slot is still pending a
// run. The cleanup returned by an effect invocation runs before the slot's
// next invocation and on hard teardown.
func UseEffect(effect core.Effect, deps core.Deps) {
	h := current()
	defer h.memory.Advance()

	if c, ok := h.memory.Read(); ok {
		ec := asEffectCell(h, c)
		if ec.Outdated || !core.DepsEqual(ec.Deps, deps) {
			ec.Effect = effect
			ec.Deps = deps
			ec.Outdated = true
		}
		return
	}

	h.memory.Write(memory.NewEffectCell(effect, deps))
}

// UseMemo returns the value produced by compute, recomputing only when deps
// differs from the previously stored list. The stored value is returned
// unchanged otherwise, guaranteeing referential stability.
func UseMemo(compute func() any, deps core.Deps) any {
	h := current()
	defer h.memory.Advance()

	if c, ok := h.memory.Read(); ok {
		mc := asMemoCell(h, c)
		if !core.DepsEqual(mc.Deps, deps) {
			mc.Value = compute()
			mc.Deps = deps
		}
		return mc.Value
	}

	mc := memory.NewMemoCell(compute(), deps)
	h.memory.Write(mc)
	return mc.Value
}

// UseCallback returns fn itself, keyed by deps: the same function value is
// returned across renders while deps is unchanged.
func UseCallback(fn any, deps core.Deps) any {
	return UseMemo(func() any { return fn }, deps)
}

// UseRef returns a mutable container whose identity is stable for the
// agent's entire lifetime until a hard reset. The initial value is only used
// when the slot is first created.
func UseRef(initial any) *core.Ref {
	ref := UseMemo(func() any { return &core.Ref{Current: initial} }, core.Deps{})
	return ref.(*core.Ref)
}

func asStateCell(h *Host, c memory.Cell) *memory.StateCell {
	sc, ok := c.(*memory.StateCell)
	if !ok {
		panic(fmt.Sprintf("agenthooks: slot %d holds %T, want state cell (hook call order changed between renders)", h.memory.Cursor(), c))
	}
	return sc
}

func asEffectCell(h *Host, c memory.Cell) *memory.EffectCell {
	ec, ok := c.(*memory.EffectCell)
	if !ok {
		panic(fmt.Sprintf("agenthooks: slot %d holds %T, want effect cell (hook call order changed between renders)", h.memory.Cursor(), c))
	}
	return ec
}

func asMemoCell(h *Host, c memory.Cell) *memory.MemoCell {
	mc, ok := c.(*memory.MemoCell)
	if !ok {
		panic(fmt.Sprintf("agenthooks: slot %d holds %T, want memo cell (hook call order changed between renders)", h.memory.Cursor(), c))
	}
	return mc
}
