package catalog

import (
	"context"
	"time"

	"checkout-service/internal/models"

	"github.com/shopspring/decimal"
)

// StaticSource serves a fixed in-memory catalog after a simulated delay
type StaticSource struct {
	products []models.Product
	latency  time.Duration
	err      error
}

// StaticOption configures a StaticSource
type StaticOption func(*StaticSource)

// WithLatency delays every fetch by d
func WithLatency(d time.Duration) StaticOption {
	return func(s *StaticSource) { s.latency = d }
}

// WithError makes every fetch fail with err
func WithError(err error) StaticOption {
	return func(s *StaticSource) { s.err = err }
}

// NewStaticSource creates a source over products
func NewStaticSource(products []models.Product, opts ...StaticOption) *StaticSource {
	s := &StaticSource{products: products}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch waits for the configured latency then returns a copy of the catalog
func (s *StaticSource) Fetch(ctx context.Context) ([]models.Product, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if s.err != nil {
		return nil, s.err
	}

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// DefaultProducts is the demo catalog served when no database is configured
func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Mechanical keyboard", AvailableCount: 5, Price: decimal.RequireFromString("100")},
		{ID: 2, Name: "Ergonomic chair", AvailableCount: 10, Price: decimal.RequireFromString("200")},
		{ID: 3, Name: "27\" monitor", AvailableCount: 4, Price: decimal.RequireFromString("329.99")},
		{ID: 4, Name: "USB-C dock", AvailableCount: 8, Price: decimal.RequireFromString("89.50")},
		{ID: 5, Name: "Noise cancelling headset", AvailableCount: 3, Price: decimal.RequireFromString("149.95")},
		{ID: 6, Name: "Desk lamp", AvailableCount: 0, Price: decimal.RequireFromString("24.99")},
	}
}
