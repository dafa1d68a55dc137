package host

import (
	"sync"
	"time"

	"github.com/hupe1980/agenthooks/core"
	"github.com/hupe1980/agenthooks/logging"
	"github.com/hupe1980/agenthooks/memory"
	"github.com/hupe1980/agenthooks/scheduler"
)

// Options configures a Host instance.
type Options struct {
	// ID identifies the host in events and logs.
	// Defaults to a generated UUID if empty.
	ID string

	// Scheduler defers asynchronous re-renders.
	// Defaults to an owned scheduler.Serial if nil; Close releases it.
	Scheduler core.Scheduler

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Host owns one agent function, its slot memory and its listener, and drives
// the render procedure: a multi-pass convergence loop that re-invokes the
// agent until state and effects stabilize, emitting intermediate value
// events for superseded passes and exactly one terminating event per render.
//
// Lifecycle: created empty; each Render call supplies fresh arguments and
// may grow or reuse memory; Reset or an unrecovered failure empties memory
// (hard reset) and runs all outstanding cleanups. The Host itself is only
// released by its owner, via Close.
type Host struct {
	// Identity and collaborators - immutable after construction
	id        string
	agent     core.Agent
	listener  core.Listener
	scheduler core.Scheduler
	logger    logging.Logger

	// ownScheduler is set when the default Serial scheduler was created by
	// the constructor; Close stops it.
	ownScheduler *scheduler.Serial

	// Render state - mu serializes renders, resets and async flushes
	mu     sync.Mutex
	memory *memory.Memory
	args   []any
}

// New creates a Host bound to an agent function and a listener. Both are
// fixed for the host's lifetime. All results of Render, Reset and
// asynchronous re-renders arrive via the listener; it is invoked
// synchronously and must not call back into the host.
func New(agent core.Agent, listener core.Listener, optFns ...func(o *Options)) *Host {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ID == "" {
		opts.ID = core.NewID()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if listener == nil {
		listener = func(core.Event) {}
	}

	h := &Host{
		id:       opts.ID,
		agent:    agent,
		listener: listener,
		logger:   opts.Logger,
		memory:   memory.New(func(o *memory.Options) { o.Logger = opts.Logger }),
	}

	if opts.Scheduler != nil {
		h.scheduler = opts.Scheduler
	} else {
		h.ownScheduler = scheduler.NewSerial(func(o *scheduler.Options) { o.Logger = opts.Logger })
		h.scheduler = h.ownScheduler
	}

	return h
}

// ID returns the host identifier used in events and logs.
func (h *Host) ID() string { return h.id }

// Render stores the supplied arguments and runs the render procedure to
// completion in synchronous mode. It has no return value; results arrive at
// the listener as zero or more intermediate value events followed by exactly
// one terminating event (final value or error). Failures of the agent or of
// effects never escape Render: they tear the memory down and surface as an
// error event.
func (h *Host) Render(args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.args = args
	h.render(false)
}

// Reset unconditionally discards the host's memory, running all outstanding
// effect cleanups, and emits a reset event. The next Render starts the agent
// from a blank slate. Reset is idempotent.
func (h *Host) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.memory.Teardown()
	h.emit(core.NewResetEvent(h.id))
}

// Close releases the host's owned scheduler, draining any still-queued
// flushes. Hosts constructed with a caller-provided scheduler are unaffected.
func (h *Host) Close() {
	if h.ownScheduler != nil {
		h.ownScheduler.Close()
	}
}

// render runs the convergence loop. Callers must hold h.mu.
//
// The inner loop re-invokes the agent as long as state set synchronously
// during the invocation keeps changing, so several setter calls made in one
// pass collapse into a single extra pass. Once the inner loop stabilizes,
// outdated effects run; state set by effects re-enters the outer loop so it
// is reflected in a further invocation before anything is reported as final.
// Only the very last value is reported as non-intermediate.
func (h *Host) render(async bool) {
	start := time.Now()
	passes := 0

	defer func() {
		if r := recover(); r != nil {
			h.memory.Teardown()
			h.emit(core.NewErrorEvent(h.id, r, async))
			h.logRenderOutcome(passes, async, time.Since(start), r)
		}
	}()

	var last any
	produced := false
	for {
		for {
			if produced {
				h.emit(core.NewValueEvent(h.id, last, async, true))
			}
			last = h.invokeAgent()
			produced = true
			passes++
			h.memory.Rewind()
			if !h.memory.ApplyPendingStateChanges() {
				break
			}
		}
		h.memory.RunOutdatedEffects()
		if !h.memory.ApplyPendingStateChanges() {
			break
		}
	}

	h.emit(core.NewValueEvent(h.id, last, async, false))
	h.logRenderOutcome(passes, async, time.Since(start), nil)
}

// logRenderOutcome records how a render procedure ended, using the
// structured render helper when available.
func (h *Host) logRenderOutcome(passes int, async bool, dur time.Duration, failure any) {
	if al, ok := h.logger.(*logging.AgentHooksLogger); ok {
		al.LogRenderPass(passes, async, dur, failure == nil, failure)
		return
	}
	if failure != nil {
		h.logger.Error("host: render failed host_id=%s async=%v failure=%v", h.id, async, failure)
		return
	}
	h.logger.Debug("host: render converged host_id=%s passes=%d async=%v duration=%s", h.id, passes, async, dur)
}

// scheduleFlush defers an application of pending state updates. The flush
// re-renders in asynchronous mode only when the batch actually changed some
// cell's state; flushes that find the queues already drained by an earlier
// one are silent, which is how rapid out-of-render updates coalesce into a
// single extra render.
func (h *Host) scheduleFlush() {
	h.scheduler.Schedule(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.flushPending()
	})
}

// flushPending applies the queued batch and re-renders when it changed some
// cell's value. It carries the same failure boundary as a render: a
// panicking updater tears the memory down and surfaces as an asynchronous
// error event rather than escaping to the scheduler. Callers must hold h.mu.
func (h *Host) flushPending() {
	defer func() {
		if r := recover(); r != nil {
			h.memory.Teardown()
			h.emit(core.NewErrorEvent(h.id, r, true))
		}
	}()

	changed := h.memory.ApplyPendingStateChanges()
	if al, ok := h.logger.(*logging.AgentHooksLogger); ok {
		al.LogStateUpdate(changed, changed)
	}
	if changed {
		h.render(true)
	}
}

func (h *Host) emit(ev core.Event) {
	h.logger.Debug("host: deliver event host_id=%s type=%s async=%v intermediate=%v", h.id, ev.Type, ev.Async, ev.Intermediate)
	h.listener(ev)
}
