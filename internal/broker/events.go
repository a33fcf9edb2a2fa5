package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout-service/internal/checkout"
	"checkout-service/internal/models"
	"checkout-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher writes a keyed event to the bus
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

type outgoing struct {
	key   string
	event interface{}
}

// EventPublisher turns checkout session activity into domain events.
// Events are queued and written by Run so publishing never blocks a store.
type EventPublisher struct {
	producer Publisher
	queue    chan outgoing
	logger   *zap.Logger
}

// NewEventPublisher creates a new event publisher with a queue of size buffer
func NewEventPublisher(producer Publisher, buffer int) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		queue:    make(chan outgoing, buffer),
		logger:   util.GetLogger(),
	}
}

// Run writes queued events until ctx is cancelled, then flushes what is left
func (ep *EventPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ep.flush()
			return
		case out := <-ep.queue:
			ep.publish(ctx, out)
		}
	}
}

func (ep *EventPublisher) flush() {
	for {
		select {
		case out := <-ep.queue:
			ep.publish(context.Background(), out)
		default:
			return
		}
	}
}

func (ep *EventPublisher) publish(ctx context.Context, out outgoing) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := ep.producer.PublishEvent(ctx, out.key, out.event); err != nil {
		ep.logger.Error("Failed to publish checkout event",
			zap.String("key", out.key),
			zap.Error(err))
	}
}

func (ep *EventPublisher) enqueue(sessionID string, event interface{}) {
	out := outgoing{key: "checkout-" + sessionID, event: event}
	select {
	case ep.queue <- out:
	default:
		ep.logger.Warn("Event queue full, dropping checkout event",
			zap.String("session_id", sessionID),
			zap.String("type", fmt.Sprintf("%T", event)))
	}
}

// SessionStarted publishes CheckoutStarted
func (ep *EventPublisher) SessionStarted(sessionID string) {
	ep.enqueue(sessionID, &models.CheckoutStartedEvent{
		BaseEvent: models.NewBaseEvent(models.EventTypeCheckoutStarted, sessionID),
	})
}

// StateChanged publishes the event matching an accepted action
func (ep *EventPublisher) StateChanged(sessionID string, change checkout.Change) {
	switch a := change.Action.(type) {
	case checkout.ProductsLoaded:
		ep.enqueue(sessionID, &models.CatalogLoadedEvent{
			BaseEvent:    models.NewBaseEvent(models.EventTypeCatalogLoaded, sessionID),
			ProductCount: len(change.State.Products),
		})

	case checkout.LoadFailed:
		reason := "unknown"
		if a.Err != nil {
			reason = a.Err.Error()
		}
		ep.enqueue(sessionID, &models.CatalogLoadFailedEvent{
			BaseEvent: models.NewBaseEvent(models.EventTypeCatalogLoadFailed, sessionID),
			Reason:    reason,
		})

	case checkout.SetQuantity:
		totals := change.State.Totals()
		ep.enqueue(sessionID, &models.QuantityChangedEvent{
			BaseEvent:    models.NewBaseEvent(models.EventTypeQuantityChanged, sessionID),
			ProductID:    a.ProductID,
			Quantity:     a.Quantity,
			OrderTotal:   totals.OrderTotal,
			Discount:     totals.Discount,
			PayableTotal: totals.PayableTotal,
		})
	}
}

// SessionClosed publishes CheckoutClosed
func (ep *EventPublisher) SessionClosed(sessionID string, final checkout.State) {
	ep.enqueue(sessionID, &models.CheckoutClosedEvent{
		BaseEvent:    models.NewBaseEvent(models.EventTypeCheckoutClosed, sessionID),
		PayableTotal: final.Totals().PayableTotal,
	})
}

// EventHandler handles incoming events
type EventHandler struct {
	onAny            func(context.Context, models.BaseEvent, []byte) error
	onQuantityChange func(context.Context, *models.QuantityChangedEvent) error
	onCheckoutClosed func(context.Context, *models.CheckoutClosedEvent) error
	logger           *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnAny registers a handler called for every event before typed handlers
func (eh *EventHandler) OnAny(handler func(context.Context, models.BaseEvent, []byte) error) {
	eh.onAny = handler
}

// OnQuantityChanged registers a handler for QuantityChanged events
func (eh *EventHandler) OnQuantityChanged(handler func(context.Context, *models.QuantityChangedEvent) error) {
	eh.onQuantityChange = handler
}

// OnCheckoutClosed registers a handler for CheckoutClosed events
func (eh *EventHandler) OnCheckoutClosed(handler func(context.Context, *models.CheckoutClosedEvent) error) {
	eh.onCheckoutClosed = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	if eh.onAny != nil {
		if err := eh.onAny(ctx, baseEvent, msg.Value); err != nil {
			return err
		}
	}

	switch baseEvent.EventType {
	case models.EventTypeQuantityChanged:
		if eh.onQuantityChange != nil {
			var event models.QuantityChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal QuantityChanged event: %w", err)
			}
			return eh.onQuantityChange(ctx, &event)
		}

	case models.EventTypeCheckoutClosed:
		if eh.onCheckoutClosed != nil {
			var event models.CheckoutClosedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CheckoutClosed event: %w", err)
			}
			return eh.onCheckoutClosed(ctx, &event)
		}
	}

	return nil
}
