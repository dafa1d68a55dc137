// Package journal provides storage for per-host event histories.
//
// Every event a host emits through the engine is appended to its journal,
// giving callers a durable, ordered record of intermediate values, final
// values, resets and errors. The package ships a volatile in-memory store;
// persistent backends implement core.JournalStore.
package journal
