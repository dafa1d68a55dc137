// Package core provides the foundational domain types, interfaces and
// contracts used by AgentHooks. It defines the core abstractions for:
//
//   - Agents (plain stateless functions orchestrated by a Host)
//   - Events (immutable value / reset / error records delivered to listeners)
//   - Hook value types (Deps, Effect, Cleanup, Updater, Ref)
//   - Journals (ordered per-host event histories)
//   - Pluggable collaborators (Scheduler, JournalStore, Engine)
//
// The package intentionally keeps implementation concerns (slot storage,
// render orchestration, concrete stores) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
