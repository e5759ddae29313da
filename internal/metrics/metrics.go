// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Period outcomes.
const (
	OutcomeMerged    = "merged"
	OutcomeNoRules   = "no_rules"
	OutcomeNoData    = "no_data"
	OutcomeFailed    = "failed"
	OutcomeConnError = "connection_error"
)

// Store write results.
const (
	WriteInserted = "inserted"
	WriteUpdated  = "updated"
	WriteFailed   = "failed"
)

var (
	// Pipeline Metrics
	PeriodsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextbasket_periods_total",
			Help: "Total number of processed periods by outcome",
		},
		[]string{"outcome"}, // "merged", "no_rules", "no_data", "failed", "connection_error"
	)

	BasketsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nextbasket_baskets_loaded_total",
			Help: "Total number of baskets aggregated from order lines",
		},
	)

	LastSuccessfulPeriod = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nextbasket_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last period merged into the store",
		},
	)

	// Mining Metrics
	RulesMined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nextbasket_rules_mined_total",
			Help: "Total number of association rules produced by mining",
		},
	)

	MiningDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nextbasket_mining_duration_seconds",
			Help:    "Duration of one FP-growth mining run in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	// Store Metrics
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextbasket_store_writes_total",
			Help: "Total number of rule store upserts by result",
		},
		[]string{"result"}, // "inserted", "updated", "failed"
	)

	StoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nextbasket_store_breaker_state",
			Help: "Rule store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextbasket_recommendations_total",
			Help: "Total number of recommendations by match kind",
		},
		[]string{"match"}, // "exact", "fallback", "none"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextbasket_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nextbasket_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nextbasket_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)
)

// RecordPeriod records the outcome of one processed period.
func RecordPeriod(outcome string) {
	PeriodsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeMerged {
		LastSuccessfulPeriod.Set(float64(time.Now().Unix()))
	}
}

// RecordMining records a completed mining run.
func RecordMining(duration time.Duration, rules int) {
	MiningDuration.Observe(duration.Seconds())
	RulesMined.Add(float64(rules))
}

// RecordStoreWrite records one upsert result.
func RecordStoreWrite(result string) {
	StoreWrites.WithLabelValues(result).Inc()
}

// RecordRecommendation records one recommendation by match kind.
func RecordRecommendation(match string) {
	RecommendationsTotal.WithLabelValues(match).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
