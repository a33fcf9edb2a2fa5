// Package pricing derives line totals, order totals and the bulk discount
// from a catalog and a set of ordered quantities. Every function is pure;
// callers recompute on each read instead of caching results.
package pricing

import (
	"checkout-service/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// DiscountThreshold is the order total that must be exceeded for a discount
	DiscountThreshold = decimal.NewFromInt(1000)
	// DiscountRate is the fraction taken off qualifying orders
	DiscountRate = decimal.NewFromFloat(0.1)
)

// Totals bundles the derived amounts for an order
type Totals struct {
	OrderTotal   decimal.Decimal `json:"order_total"`
	Discount     decimal.Decimal `json:"discount"`
	PayableTotal decimal.Decimal `json:"payable_total"`
}

// LineTotal returns quantity * price rounded to cents
func LineTotal(p models.Product, quantity int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// OrderTotal sums quantity * price over the catalog.
// Lines are not rounded individually.
func OrderTotal(products []models.Product, order models.Quantities) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		q := order.Of(p.ID)
		if q == 0 {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(q))))
	}
	return total
}

// Discount returns 10% of total when total exceeds the threshold, else zero
func Discount(total decimal.Decimal) decimal.Decimal {
	if total.GreaterThan(DiscountThreshold) {
		return total.Mul(DiscountRate)
	}
	return decimal.Zero
}

// PayableTotal returns total minus its discount
func PayableTotal(total decimal.Decimal) decimal.Decimal {
	return total.Sub(Discount(total))
}

// Summarize derives all totals for an order
func Summarize(products []models.Product, order models.Quantities) Totals {
	total := OrderTotal(products, order)
	return Totals{
		OrderTotal:   total,
		Discount:     Discount(total),
		PayableTotal: PayableTotal(total),
	}
}

// Format renders an amount as dollars with exactly two decimals, e.g. "$ 300.00"
func Format(amount decimal.Decimal) string {
	return "$ " + amount.StringFixed(2)
}
