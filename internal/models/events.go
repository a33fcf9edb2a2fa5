package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeCheckoutStarted   = "CHECKOUT_STARTED"
	EventTypeCatalogLoaded     = "CATALOG_LOADED"
	EventTypeCatalogLoadFailed = "CATALOG_LOAD_FAILED"
	EventTypeQuantityChanged   = "QUANTITY_CHANGED"
	EventTypeCheckoutClosed    = "CHECKOUT_CLOSED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a fresh event id and time
func NewBaseEvent(eventType, sessionID string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
}

// CheckoutStartedEvent published when a session is created
type CheckoutStartedEvent struct {
	BaseEvent
}

// CatalogLoadedEvent published when the catalog fetch resolves
type CatalogLoadedEvent struct {
	BaseEvent
	ProductCount int `json:"product_count"`
}

// CatalogLoadFailedEvent published when the catalog fetch rejects
type CatalogLoadFailedEvent struct {
	BaseEvent
	Reason string `json:"reason"`
}

// QuantityChangedEvent published after an accepted quantity change
type QuantityChangedEvent struct {
	BaseEvent
	ProductID    int64           `json:"product_id"`
	Quantity     int             `json:"quantity"`
	OrderTotal   decimal.Decimal `json:"order_total"`
	Discount     decimal.Decimal `json:"discount"`
	PayableTotal decimal.Decimal `json:"payable_total"`
}

// CheckoutClosedEvent published when a session is discarded
type CheckoutClosedEvent struct {
	BaseEvent
	PayableTotal decimal.Decimal `json:"payable_total"`
}
