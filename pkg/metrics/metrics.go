package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealth_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Market data metrics
	PriceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_price_fetches_total",
			Help: "Total number of outbound price fetches",
		},
		[]string{"provider", "status"}, // status: success, error, skipped
	)

	PriceRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealth_price_refresh_duration_seconds",
			Help:    "Duration of full price cache refresh cycles",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"class"},
	)

	StaleQuotesGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wealth_stale_quotes",
			Help: "Number of symbols currently served from a stale or unknown quote",
		},
		[]string{"class"},
	)

	// Portfolio metrics
	SkippedTransactionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wealth_skipped_transactions_total",
			Help: "Total number of malformed transactions skipped during aggregation",
		},
	)

	ValuationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_valuations_total",
			Help: "Total number of portfolio valuation cycles",
		},
		[]string{"status"},
	)

	// Chat metrics
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_chat_requests_total",
			Help: "Total number of chat assistant requests",
		},
		[]string{"provider", "status"},
	)
)
