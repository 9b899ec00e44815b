package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess      = "success"
	OutcomeNetworkError = "network_error"
	OutcomeHTTPError    = "http_error"
	OutcomeParseError   = "parse_error"
)

var (
	AdviceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advice_requests_total",
			Help: "Total number of advisory calls by outcome",
		},
		[]string{"outcome"},
	)

	AdviceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advice_request_duration_seconds",
			Help:    "Duration of advisory calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"outcome"},
	)

	AdviceInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advice_requests_in_flight",
			Help: "Number of advisory calls currently awaiting the endpoint",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)
)
