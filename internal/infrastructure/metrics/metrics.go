package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_parses_total",
			Help: "Total number of parsed messages by intent",
		},
		[]string{"intent"},
	)

	ClarificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_clarifications_total",
			Help: "Total number of parses that needed a clarification, by kind",
		},
		[]string{"kind"},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orderbot_parse_duration_seconds",
			Help:    "Duration of message parsing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)

	ClassifierCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_classifier_calls_total",
			Help: "Total number of zero-shot classifier calls by outcome",
		},
		[]string{"outcome"},
	)

	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderbot_orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)
)

// ObserveParse records the outcome of one parse
func ObserveParse(intent, clarification string, elapsed time.Duration) {
	ParsesTotal.WithLabelValues(intent).Inc()
	if clarification != "" {
		ClarificationsTotal.WithLabelValues(clarification).Inc()
	}
	ParseDuration.Observe(elapsed.Seconds())
}
