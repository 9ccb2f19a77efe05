package testutils

import (
	"context"
	"fmt"
	"sync"
)

// MockInferencer is a test inferencer with scripted responses
type MockInferencer struct {
	mu sync.Mutex

	// Response is returned verbatim when ResponseFunc is nil
	Response string

	// ResponseFunc computes the response from the prompt when set
	ResponseFunc func(systemContext, prompt string) string

	// FailAlways causes every Infer call to return an error
	FailAlways bool

	// Calls records every (systemContext, prompt) pair seen
	Calls [][2]string
}

func NewMockInferencer(response string) *MockInferencer {
	return &MockInferencer{Response: response}
}

func (m *MockInferencer) Infer(_ context.Context, systemContext, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, [2]string{systemContext, prompt})

	if m.FailAlways {
		return "", fmt.Errorf("mock inference failure")
	}
	if m.ResponseFunc != nil {
		return m.ResponseFunc(systemContext, prompt), nil
	}
	return m.Response, nil
}

func (m *MockInferencer) Close() error {
	return nil
}
