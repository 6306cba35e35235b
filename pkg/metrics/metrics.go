// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineclub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cineclub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineclub_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Review Metrics
	ReviewMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineclub_review_mutations_total",
			Help: "Review writes by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok, duplicate, forbidden, conflict, not_found
	)

	// Username Cache Metrics
	UsernameCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineclub_username_cache_lookups_total",
			Help: "Username cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordReviewMutation(operation, outcome string) {
	ReviewMutations.WithLabelValues(operation, outcome).Inc()
}

func RecordCacheLookup(result string) {
	UsernameCacheLookups.WithLabelValues(result).Inc()
}

// RegisterPoolStats exports connection pool gauges read from stat on scrape.
func RegisterPoolStats(reg prometheus.Registerer, stat func() *pgxpool.Stat) error {
	gauges := []struct {
		name string
		help string
		read func(*pgxpool.Stat) float64
	}{
		{"cineclub_db_pool_total_conns", "Total connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
		{"cineclub_db_pool_acquired_conns", "Connections currently in use", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
		{"cineclub_db_pool_idle_conns", "Idle connections", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
		{"cineclub_db_pool_max_conns", "Maximum pool size", func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
	}

	for _, g := range gauges {
		read := g.read
		collector := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return read(stat()) },
		)
		if err := reg.Register(collector); err != nil {
			return err
		}
	}

	return nil
}
