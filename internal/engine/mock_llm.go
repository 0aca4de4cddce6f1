package engine

import (
	"context"
	"sync"
)

// MockClient is a test implementation of the llm.Client interface. It
// returns canned responses and records every prompt it receives.
type MockClient struct {
	Err      error
	Response string
	prompts  []string
	mu       sync.Mutex
}

// NewMockClient creates a mock adapter that always returns response.
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

// Generate returns the canned response or error, recording the prompt.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Provider implements llm.Client.
func (m *MockClient) Provider() string {
	return "mock"
}

// Prompts returns a copy of the prompts seen so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns how many times Generate was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
