package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidProduct is returned when a catalog record breaks the product invariants
var ErrInvalidProduct = errors.New("invalid product")

// Product represents a product in the catalog
type Product struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	AvailableCount int             `db:"available_count" json:"availableCount"`
	Price          decimal.Decimal `db:"price" json:"price"`
}

// Validate checks the product invariants
func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: product %d has no name", ErrInvalidProduct, p.ID)
	}
	if p.AvailableCount < 0 {
		return fmt.Errorf("%w: product %d has negative available count %d", ErrInvalidProduct, p.ID, p.AvailableCount)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: product %d has negative price %s", ErrInvalidProduct, p.ID, p.Price)
	}
	return nil
}

// ValidateCatalog validates every product and rejects duplicate ids
func ValidateCatalog(products []Product) error {
	seen := make(map[int64]struct{}, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: duplicate product id %d", ErrInvalidProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Quantities maps product id to ordered quantity.
// Products with quantity zero are absent.
type Quantities map[int64]int

// Of returns the ordered quantity for a product, zero when absent
func (q Quantities) Of(productID int64) int {
	return q[productID]
}

// Clone returns an independent copy
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for id, n := range q {
		out[id] = n
	}
	return out
}

// Checkout statuses
const (
	StatusLoading = "LOADING"
	StatusReady   = "READY"
	StatusFailed  = "FAILED"
)

// CheckoutEvent is an audit row for a consumed checkout event
type CheckoutEvent struct {
	EventID   string `db:"event_id"`
	EventType string `db:"event_type"`
	SessionID string `db:"session_id"`
	Payload   string `db:"payload"`
}
