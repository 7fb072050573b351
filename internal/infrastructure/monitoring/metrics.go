package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	SalesCommittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_committed_total",
			Help: "Total number of committed sales",
		},
	)

	SalesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_rejected_total",
			Help: "Total number of rejected sale requests",
		},
		[]string{"reason"},
	)

	SaleTotalCents = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sale_total_cents",
			Help:    "Distribution of committed sale totals in cents",
			Buckets: prometheus.ExponentialBuckets(1000, 4, 10),
		},
	)

	SaleItemsPerSale = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sale_items_per_sale",
			Help:    "Distribution of line item counts per committed sale",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	SaleCommitRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sale_commit_retries_total",
			Help: "Total number of sale commit retries after transient conflicts",
		},
	)

	ProductStockLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "product_stock_level",
			Help: "Last observed stock quantity per product",
		},
		[]string{"product_id"},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

var (
	RedisCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Duration of Redis commands in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"command"},
	)

	RateLimitedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of requests refused by the rate limiter",
		},
	)
)

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start).Seconds()
		DBQueryDuration.WithLabelValues(queryType, table).Observe(duration)
	}
}

func RecordSaleCommitted(totalCents int64, itemCount int) {
	SalesCommittedTotal.Inc()
	SaleTotalCents.Observe(float64(totalCents))
	SaleItemsPerSale.Observe(float64(itemCount))
}

func RecordSaleRejected(reason string) {
	SalesRejectedTotal.WithLabelValues(reason).Inc()
}

func RecordCommitRetry() {
	SaleCommitRetriesTotal.Inc()
}

func RecordRateLimited() {
	RateLimitedRequestsTotal.Inc()
}

func SetProductStock(productID string, qty int) {
	ProductStockLevel.WithLabelValues(productID).Set(float64(qty))
}
