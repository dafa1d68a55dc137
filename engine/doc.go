// Package engine provides the multi-host orchestration layer: a registry of
// named agent functions, a factory for hosts, per-host event channels and
// journal persistence.
//
// The Engine is the recommended entry point for applications that manage
// several agents. It spawns one host per Spawn call, forwards every event
// the host emits to the host's journal and to a buffered event channel, and
// tears hosts down on Release. Applications that only need a single agent
// can use the host package directly.
package engine
