package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/junedipasaribu/ecommerce-sub000/internal/order"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEventSource struct {
	mu           sync.Mutex
	events       []*order.OutboxEvent
	fetchErr     error
	markErr      error
	processedIDs []int64
}

func (m *mockEventSource) GetUnprocessedEvents(_ context.Context, limit int) ([]*order.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if len(m.events) > limit {
		return m.events[:limit], nil
	}
	return m.events, nil
}

func (m *mockEventSource) MarkEventAsProcessed(_ context.Context, eventID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.processedIDs = append(m.processedIDs, eventID)
	return nil
}

func (m *mockEventSource) processedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.processedIDs)
}

type mockWriter struct {
	mu       sync.Mutex
	messages []kafkaGo.Message
	writeErr error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func newTestPoller(repo eventSource, writer messageWriter) *OutboxPoller {
	return &OutboxPoller{eventTick: time.Millisecond, repo: repo, writer: writer}
}

func testEvent(id int64) *order.OutboxEvent {
	return &order.OutboxEvent{
		ID:          id,
		AggregateID: "c7f9a9f0-0000-0000-0000-000000000001",
		EventType:   "ORDER_PAID",
		Payload:     []byte(`{"order_id":"c7f9a9f0-0000-0000-0000-000000000001"}`),
	}
}

func TestProcessUnpublishedEvents(t *testing.T) {
	repo := &mockEventSource{events: []*order.OutboxEvent{testEvent(1), testEvent(2)}}
	writer := &mockWriter{}
	poller := newTestPoller(repo, writer)

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, []int64{1, 2}, repo.processedIDs)

	msg := writer.messages[0]
	assert.Equal(t, []byte("c7f9a9f0-0000-0000-0000-000000000001"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("ORDER_PAID"), msg.Headers[0].Value)
}

func TestPublishFailureLeavesEventUnprocessed(t *testing.T) {
	repo := &mockEventSource{events: []*order.OutboxEvent{testEvent(1)}}
	writer := &mockWriter{writeErr: errors.New("broker unreachable")}
	poller := newTestPoller(repo, writer)

	poller.processUnpublishedEvents(context.Background())

	assert.Empty(t, repo.processedIDs)
}

func TestFetchFailureIsTransient(t *testing.T) {
	repo := &mockEventSource{fetchErr: errors.New("database is down")}
	writer := &mockWriter{}
	poller := newTestPoller(repo, writer)

	poller.processUnpublishedEvents(context.Background())

	assert.Empty(t, writer.messages)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &mockEventSource{events: []*order.OutboxEvent{testEvent(1)}}
	writer := &mockWriter{}
	poller := newTestPoller(repo, writer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return repo.processedCount() > 0
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
