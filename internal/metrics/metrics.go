// Package metrics provides Prometheus metrics for the card catalog.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardvault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardvault_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Import Metrics
	ImportRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardvault_import_runs_total",
			Help: "Total number of completed card-list import runs",
		},
	)

	ImportCardsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardvault_import_cards_created_total",
			Help: "Cards created by import runs",
		},
	)

	ImportCardsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardvault_import_cards_updated_total",
			Help: "Cards updated by import runs",
		},
	)

	// Catalog Metrics
	CardsLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardvault_cards_live",
			Help: "Number of live (non-deleted) cards in the catalog",
		},
	)

	CanonicalKeyConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardvault_canonical_key_conflicts_total",
			Help: "API writes rejected because the canonical key already belongs to a live card",
		},
	)
)
