package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"checkout-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRecorder struct {
	events map[string]*models.CheckoutEvent
	err    error
}

func (m *memoryRecorder) RecordEvent(ctx context.Context, event *models.CheckoutEvent) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.events[event.EventID]; ok {
		return false, nil
	}
	m.events[event.EventID] = event
	return true, nil
}

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: raw}
}

func TestAuditWorkerRecordsEventsOnce(t *testing.T) {
	rec := &memoryRecorder{events: map[string]*models.CheckoutEvent{}}
	w := NewAuditWorker(nil, rec)

	event := models.CheckoutStartedEvent{BaseEvent: models.NewBaseEvent(models.EventTypeCheckoutStarted, "s1")}
	msg := message(t, event)

	require.NoError(t, w.Handler().HandleMessage(context.Background(), msg))
	require.NoError(t, w.Handler().HandleMessage(context.Background(), msg))

	require.Len(t, rec.events, 1)
	stored := rec.events[event.EventID]
	assert.Equal(t, "s1", stored.SessionID)
	assert.Equal(t, models.EventTypeCheckoutStarted, stored.EventType)
	assert.JSONEq(t, string(msg.Value), stored.Payload)
}

func TestAuditWorkerHandlesClosedEvents(t *testing.T) {
	rec := &memoryRecorder{events: map[string]*models.CheckoutEvent{}}
	w := NewAuditWorker(nil, rec)

	event := models.CheckoutClosedEvent{BaseEvent: models.NewBaseEvent(models.EventTypeCheckoutClosed, "s2")}

	require.NoError(t, w.Handler().HandleMessage(context.Background(), message(t, event)))
	assert.Len(t, rec.events, 1)
}

func TestAuditWorkerPropagatesRecorderErrors(t *testing.T) {
	boom := errors.New("db down")
	w := NewAuditWorker(nil, &memoryRecorder{err: boom})

	event := models.CheckoutStartedEvent{BaseEvent: models.NewBaseEvent(models.EventTypeCheckoutStarted, "s3")}

	err := w.Handler().HandleMessage(context.Background(), message(t, event))
	assert.ErrorIs(t, err, boom)
}
