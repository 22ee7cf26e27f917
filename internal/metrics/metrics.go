// Package metrics holds the Prometheus collectors of the reconciler and the dispatcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcileRuns tracks collection passes by result (ok, failed, skipped)
	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftsync_reconcile_runs_total",
			Help: "Total number of collection reconciliation passes",
		},
		[]string{"collection", "result"},
	)

	// ReconcileDuration tracks how long a collection pass takes
	ReconcileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nftsync_reconcile_duration_seconds",
			Help:    "Duration of a collection reconciliation pass in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"collection"},
	)

	// OwnershipEvents tracks classified ownership changes per event type
	OwnershipEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftsync_ownership_events_total",
			Help: "Total number of classified ownership changes",
		},
		[]string{"collection", "event_type"},
	)

	// ClassifierRules tracks which rule decided a classification
	ClassifierRules = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftsync_classifier_rule_total",
			Help: "Total number of classifications decided by each rule",
		},
		[]string{"rule"},
	)

	// ReconcileErrors tracks per-record failures of a pass
	ReconcileErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftsync_reconcile_errors_total",
			Help: "Total number of records that failed to reconcile",
		},
		[]string{"collection", "stage"},
	)

	// CollectionSize tracks the number of assets reported by the indexer
	CollectionSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nftsync_collection_assets",
			Help: "Number of assets in the last fetched collection snapshot",
		},
		[]string{"collection"},
	)

	// LastRunTimestamp tracks when a collection last finished a pass
	LastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nftsync_reconcile_last_run_timestamp_seconds",
			Help: "Unix time of the last finished collection pass",
		},
		[]string{"collection"},
	)

	// OutboxClaimed tracks outbox entries claimed for delivery
	OutboxClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nftsync_outbox_claimed_total",
			Help: "Total number of outbox entries claimed for delivery",
		},
	)

	// OutboxDeliveries tracks delivery attempts by resulting status
	OutboxDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftsync_outbox_deliveries_total",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"status"},
	)

	// APIRequests tracks admin API requests
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftsync_api_requests_total",
			Help: "Total number of admin API requests",
		},
		[]string{"method", "route", "status"},
	)

	// APIRequestDuration tracks admin API latency
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nftsync_api_request_duration_seconds",
			Help:    "Admin API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
