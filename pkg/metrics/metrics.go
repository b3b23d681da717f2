package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Portfolio lifecycle metrics
	PortfolioOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_portfolio_ops_total",
			Help: "Portfolio operations by type and outcome",
		},
		[]string{"op", "outcome"}, // op: create, view, edit_load, update, delete; outcome: ok, not_found, forbidden, error
	)

	PortfoliosExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_portfolios_expired_total",
			Help: "Portfolios removed by lazy expiry at read time",
		},
	)

	// Tiered store metrics
	StoreTierOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_store_tier_ops_total",
			Help: "Store backend operations by tier and outcome",
		},
		[]string{"tier", "op", "outcome"}, // tier: primary, secondary; outcome: hit, miss, error, ok
	)

	// Market data metrics
	QuoteLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_quote_lookups_total",
			Help: "Quote lookups by outcome",
		},
		[]string{"outcome"}, // ok, error, placeholder
	)

	QuoteLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_quote_lookup_duration_seconds",
			Help:    "Quote lookup duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)
