package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "events"

// Ingestion outcomes
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route template and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	Ingest = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_total",
		Help:      "Scraper ingestion writes by outcome.",
	}, []string{"outcome"})

	StatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Events moved into a status by ingestion or dashboard actions.",
	}, []string{"status"})

	LeadsCaptured = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_captured_total",
		Help:      "Email leads stored.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests, HTTPDuration,
		Ingest, StatusTransitions, LeadsCaptured,
	)
}

func ObserveIngest(outcome string) {
	Ingest.WithLabelValues(outcome).Inc()
}

func ObserveTransition(status string, n int64) {
	if n <= 0 {
		return
	}
	StatusTransitions.WithLabelValues(status).Add(float64(n))
}
