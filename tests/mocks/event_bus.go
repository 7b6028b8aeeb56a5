package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/feedbackdesk/backend/internal/domain/entities"
)

// MockEventBus is an in-process EventBus for tests
type MockEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *entities.FeedbackEvent
	published   []*entities.FeedbackEvent
	PublishErr  error
}

// NewMockEventBus creates a new MockEventBus
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.FeedbackEvent),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.FeedbackEvent) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}

	m.mu.Lock()
	m.published = append(m.published, event)
	channels := append([]chan *entities.FeedbackEvent(nil), m.subscribers[channel]...)
	m.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.FeedbackEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribers == nil {
		return nil, errors.New("event bus is closed")
	}
	ch := make(chan *entities.FeedbackEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = nil
	return nil
}

// Published returns a copy of every event published so far
func (m *MockEventBus) Published() []*entities.FeedbackEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*entities.FeedbackEvent(nil), m.published...)
}

// SubscriberCount returns the number of subscribers on channel
func (m *MockEventBus) SubscriberCount(channel string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[channel])
}
