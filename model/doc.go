// Package model defines the minimal language-model interface used by agent
// functions that fetch completions from effects, together with a mock
// implementation for tests and examples. Provider adapters live in the
// subpackages anthropic and openai.
package model
