package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutSessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_started_total",
		Help: "Total number of checkout sessions started",
	})

	CheckoutSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_sessions_active",
		Help: "Number of checkout sessions currently open",
	})

	CatalogFetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_fetch_latency_seconds",
		Help:    "Latency of catalog fetch operations",
		Buckets: prometheus.DefBuckets,
	})

	CatalogFetchFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fetch_failed_total",
		Help: "Total number of failed catalog fetches",
	}, []string{"reason"})

	CatalogCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_results_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"})

	QuantityChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantity_changes_total",
		Help: "Total number of accepted quantity changes",
	})

	QuantityChangesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantity_changes_rejected_total",
		Help: "Total number of quantity changes rejected as no-ops",
	}, []string{"reason"})

	DiscountedCheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discounted_checkouts_total",
		Help: "Checkout sessions closed with a bulk discount applied",
	})

	CheckoutEventsAudited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_events_audited_total",
		Help: "Checkout events recorded by the audit worker",
	}, []string{"event_type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
