package model

import (
	"context"
	"fmt"
	"sync"
)

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface agents use to fetch completions. Complete
// blocks until the provider answers, so agents call it from effects and feed
// the result back through a state setter rather than calling it inline.
type Model interface {
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// It is safe for concurrent use.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	calls     int
}

// NewMockModel constructs a MockModel that answers from canned responses.
func NewMockModel() *MockModel {
	return &MockModel{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Calls returns how many completions have been requested.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Model; unknown prompts get a generic echo answer.
func (m *MockModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if resp, ok := m.responses[prompt]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", prompt), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
