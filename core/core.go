package core

// Agent is the stateless function whose repeated invocations a Host
// orchestrates. All persistence lives in the Host's memory, reached through
// the hook entry points; the function itself must not retain state between
// calls. The arguments are whatever the most recent render supplied; the
// return value is reported to the listener through value events.
type Agent func(args ...any) any

// Listener receives the event stream of a single Host. It is invoked
// synchronously during render procedures and from asynchronous flushes; it
// must return quickly and must not call back into the emitting Host.
type Listener func(Event)

// Scheduler defers a thunk until after the current synchronous execution
// completes. Implementations must run thunks one at a time in submission
// order and must not let a panicking thunk escape to the scheduler's caller.
type Scheduler interface {
	Schedule(fn func())
}

// Initializer is the callable form of a UseState initial value. It is
// invoked exactly once, when the slot is first created.
type Initializer = func() any

// Updater computes the next state from the previous one when passed to a
// state setter instead of a replacement value.
type Updater func(prev any) any

// Cleanup releases the resources of the previous effect invocation. A nil
// Cleanup means the effect has nothing to release.
type Cleanup func()

// Effect is a side effect scheduled by UseEffect. It runs after a render's
// state has converged and may return a Cleanup invoked before the effect's
// next run and on hard teardown.
type Effect func() Cleanup

// Ref is a single mutable container whose identity is stable for the
// agent's entire lifetime until a hard reset.
type Ref struct {
	Current any
}
