// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer AgentHooksLogger with contextual
// helpers (host, component) and domain specific logging helpers for render
// passes, effects and state updates.
package logging
