package testutils

import (
	"context"
	"sync"

	"github.com/novelforge/continuity/pkg/eventstream"
)

// MockPublisher records published events for assertions
type MockPublisher struct {
	mu     sync.Mutex
	Events []*eventstream.ExchangeRecordedEvent

	// PublishErr, when set, is returned from PublishExchange
	PublishErr error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishExchange(_ context.Context, event *eventstream.ExchangeRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilExchangeEvent
	}
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*MockPublisher)(nil)
