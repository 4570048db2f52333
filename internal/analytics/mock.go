package analytics

import (
	"context"
	"sync"
)

var _ Sink = (*MockAnalytics)(nil)

// MockAnalytics records recommendation events in memory for tests.
type MockAnalytics struct {
	mu     sync.Mutex
	events []RecommendationEvent
	// Err, when set, is returned from every call.
	Err error
}

// NewMockAnalytics creates a new mock analytics instance
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

func (m *MockAnalytics) RecordRecommendation(_ context.Context, ev RecommendationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (m *MockAnalytics) Events() []RecommendationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecommendationEvent(nil), m.events...)
}

// NoopSink drops every event.
type NoopSink struct{}

func (NoopSink) RecordRecommendation(context.Context, RecommendationEvent) error { return nil }
