// Package view turns checkout state into the product table and order
// summary shown to a shopper, and routes control clicks back to the store.
package view

import (
	"checkout-service/internal/checkout"
	"checkout-service/internal/models"
	"checkout-service/internal/pricing"
)

// Title is the page header
const Title = "Powered by People"

// LoadFailedMessage is shown when the catalog could not be fetched.
// The underlying error is logged by the store, never shown.
const LoadFailedMessage = "Unable to load products. Please try again later."

// Dispatcher receives the actions triggered by row controls
type Dispatcher interface {
	Dispatch(action checkout.Action) bool
}

// ProductRow is one line of the product table
type ProductRow struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	AvailableCount   int    `json:"available_count"`
	Price            string `json:"price"`
	Quantity         int    `json:"quantity"`
	Total            string `json:"total"`
	IncreaseDisabled bool   `json:"increase_disabled"`
	DecreaseDisabled bool   `json:"decrease_disabled"`

	dispatcher Dispatcher
}

// NewProductRow renders a product with its ordered quantity
func NewProductRow(p models.Product, quantity int, d Dispatcher) ProductRow {
	return ProductRow{
		ID:               p.ID,
		Name:             p.Name,
		AvailableCount:   p.AvailableCount,
		Price:            pricing.Format(p.Price),
		Quantity:         quantity,
		Total:            pricing.Format(pricing.LineTotal(p, quantity)),
		IncreaseDisabled: quantity >= p.AvailableCount,
		DecreaseDisabled: quantity <= 0,
		dispatcher:       d,
	}
}

// ClickIncrease asks for one more unit. Disabled controls do nothing.
// The step is relative to the store's current quantity, not to the
// quantity this row was rendered with.
func (r ProductRow) ClickIncrease() bool {
	if r.IncreaseDisabled || r.dispatcher == nil {
		return false
	}
	return r.dispatcher.Dispatch(checkout.Adjust{ProductID: r.ID, Delta: 1})
}

// ClickDecrease asks for one unit less. Disabled controls do nothing.
func (r ProductRow) ClickDecrease() bool {
	if r.DecreaseDisabled || r.dispatcher == nil {
		return false
	}
	return r.dispatcher.Dispatch(checkout.Adjust{ProductID: r.ID, Delta: -1})
}

// Summary is the order summary block
type Summary struct {
	OrderTotal string `json:"order_total"`
	Discount   string `json:"discount"`
	// DiscountText is empty unless a discount applies
	DiscountText string `json:"discount_text"`
	Total        string `json:"total"`
}

// NewSummary renders totals
func NewSummary(t pricing.Totals) Summary {
	s := Summary{
		OrderTotal: pricing.Format(t.OrderTotal),
		Discount:   pricing.Format(t.Discount),
		Total:      pricing.Format(t.PayableTotal),
	}
	if t.Discount.IsPositive() {
		s.DiscountText = "Discount: " + s.Discount
	}
	return s
}

// Page is the whole checkout screen
type Page struct {
	Title   string       `json:"title"`
	Status  string       `json:"status"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
	Rows    []ProductRow `json:"rows"`
	Summary *Summary     `json:"summary,omitempty"`
}

// Render builds the page for state; row clicks go to d
func Render(state checkout.State, d Dispatcher) Page {
	page := Page{
		Title:   Title,
		Status:  state.Status,
		Loading: state.Loading(),
		Rows:    []ProductRow{},
	}

	switch state.Status {
	case models.StatusFailed:
		page.Error = LoadFailedMessage
	case models.StatusReady:
		for _, p := range state.Products {
			page.Rows = append(page.Rows, NewProductRow(p, state.Quantity(p.ID), d))
		}
		summary := NewSummary(state.Totals())
		page.Summary = &summary
	}
	return page
}

// Row returns the row for a product id
func (p Page) Row(productID int64) (ProductRow, bool) {
	for _, r := range p.Rows {
		if r.ID == productID {
			return r, true
		}
	}
	return ProductRow{}, false
}
