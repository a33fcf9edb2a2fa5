package worker

import (
	"context"

	"checkout-service/internal/broker"
	"checkout-service/internal/models"
	"checkout-service/internal/pricing"
	"checkout-service/internal/util"

	"go.uber.org/zap"
)

// EventRecorder persists consumed checkout events
type EventRecorder interface {
	RecordEvent(ctx context.Context, event *models.CheckoutEvent) (bool, error)
}

// AuditWorker records every checkout event into the audit table
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	recorder     EventRecorder
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, recorder EventRecorder) *AuditWorker {
	w := &AuditWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		recorder:     recorder,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnAny(w.record)
	w.eventHandler.OnCheckoutClosed(w.checkoutClosed)
	return w
}

// Handler exposes the routing used for consumed messages
func (w *AuditWorker) Handler() *broker.EventHandler {
	return w.eventHandler
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting checkout audit worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("Stopping checkout audit worker")
	return w.consumer.Close()
}

func (w *AuditWorker) record(ctx context.Context, base models.BaseEvent, raw []byte) error {
	inserted, err := w.recorder.RecordEvent(ctx, &models.CheckoutEvent{
		EventID:   base.EventID,
		EventType: base.EventType,
		SessionID: base.SessionID,
		Payload:   string(raw),
	})
	if err != nil {
		return err
	}
	if !inserted {
		w.logger.Info("Event already processed", zap.String("event_id", base.EventID))
		return nil
	}

	util.CheckoutEventsAudited.WithLabelValues(base.EventType).Inc()
	return nil
}

func (w *AuditWorker) checkoutClosed(ctx context.Context, event *models.CheckoutClosedEvent) error {
	w.logger.Info("Checkout closed",
		zap.String("session_id", event.SessionID),
		zap.String("payable_total", pricing.Format(event.PayableTotal)))
	return nil
}
