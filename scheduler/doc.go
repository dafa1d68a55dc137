// Package scheduler contains concrete core.Scheduler implementations. The
// interface itself resides in the core package; depend on core.Scheduler in
// your code and select an implementation at wiring time.
//
//   - Serial runs thunks on an owned goroutine in strict submission order,
//     the default for production hosts.
//   - Manual queues thunks until Flush is called, giving tests full control
//     over when deferred work runs.
package scheduler
