package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests in dependent packages.
type MockClient struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
	ModelName    string

	mu      sync.Mutex
	prompts []string
}

// Complete records prompt and delegates to CompleteFunc.
func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "{}", nil
}

// Model returns ModelName or "mock-model".
func (m *MockClient) Model() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	return "mock-model"
}

// Close is a no-op.
func (m *MockClient) Close() error { return nil }

// Prompts returns every prompt received so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls returns the number of Complete invocations.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
