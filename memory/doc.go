// Package memory contains the ordered slot store backing a Host. Cells are
// addressed by call position: the Nth hook call of every render resolves to
// the Nth cell, so the sequence of hook calls must be identical between
// renders of the same agent (absent a hard reset). The store knows nothing
// about render orchestration; the host package drives the cursor and decides
// when pending state is applied and outdated effects run.
//
// Rationale: keeping the store free of host concerns mirrors the split
// between domain contracts (core) and orchestration (host, engine) and keeps
// the exacting cursor/teardown invariants testable in isolation.
package memory
