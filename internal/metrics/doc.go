// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

/*
Package metrics provides Prometheus metrics for the mining pipeline, the rule
store and the recommendation API.

All collectors are registered on the default registry through promauto and
are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8787/metrics

# Available Metrics

Pipeline:
  - nextbasket_periods_total{outcome}: processed periods (counter)
  - nextbasket_baskets_loaded_total: aggregated baskets (counter)
  - nextbasket_last_success_timestamp_seconds: last merged period (gauge)

Mining:
  - nextbasket_rules_mined_total: produced rules (counter)
  - nextbasket_mining_duration_seconds: FP-growth run time (histogram)

Store:
  - nextbasket_store_writes_total{result}: upserts by result (counter)
  - nextbasket_store_breaker_state: 0=closed, 1=half-open, 2=open (gauge)

Recommendation and API:
  - nextbasket_recommendations_total{match}: suggestions by match kind (counter)
  - nextbasket_api_requests_total{method,endpoint,status} (counter)
  - nextbasket_api_request_duration_seconds{method,endpoint} (histogram)
  - nextbasket_api_active_requests (gauge)

# Usage

	metrics.RecordPeriod(metrics.OutcomeMerged)
	metrics.RecordStoreWrite(metrics.WriteInserted)

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
