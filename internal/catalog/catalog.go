// Package catalog provides the data sources a checkout loads its products from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkout-service/internal/models"
	"checkout-service/internal/util"

	"go.uber.org/zap"
)

// ErrFetchFailed wraps every error returned by an instrumented fetch
var ErrFetchFailed = errors.New("catalog fetch failed")

// Source fetches the full product catalog
type Source interface {
	Fetch(ctx context.Context) ([]models.Product, error)
}

// Instrumented decorates a Source with a timeout, validation, tracing and metrics
type Instrumented struct {
	source  Source
	name    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewInstrumented wraps source. A zero timeout disables the deadline.
func NewInstrumented(source Source, name string, timeout time.Duration) *Instrumented {
	return &Instrumented{
		source:  source,
		name:    name,
		timeout: timeout,
		logger:  util.GetLogger(),
	}
}

// Fetch fetches and validates the catalog
func (i *Instrumented) Fetch(ctx context.Context) (products []models.Product, err error) {
	ctx, span := util.StartSpan(ctx, "Catalog.Fetch", util.AttrCatalogSource.String(i.name))
	defer func() { util.EndSpan(span, err) }()

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	products, err = i.source.Fetch(ctx)
	util.CatalogFetchLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		util.CatalogFetchFailed.WithLabelValues(reason).Inc()
		util.WithTrace(ctx, i.logger).Error("Catalog fetch failed",
			zap.String("source", i.name),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, i.name, err)
	}

	if err = models.ValidateCatalog(products); err != nil {
		util.CatalogFetchFailed.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, i.name, err)
	}

	span.SetAttributes(util.AttrCatalogSize.Int(len(products)))
	util.WithTrace(ctx, i.logger).Debug("Catalog fetched",
		zap.String("source", i.name),
		zap.Int("count", len(products)))
	return products, nil
}
