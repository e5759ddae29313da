// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

/*
Package config loads Nextbasket configuration with Koanf v2.

# Configuration Sources

Sources are layered, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/nextbasket/config.yaml
 3. Environment variables

# Environment Variables

Mining:
  - MIN_SUPPORT_RATIO: minimum itemset support in (0, 1] (default: 0.005)
  - MIN_CONFIDENCE_RATIO: minimum rule confidence in (0, 1] (default: 0.005)

Record source:
  - SOURCE_KIND: json or duckdb (default: json)
  - DATA_DIRECTORY: export directory (default: data1/data)
  - DATA_PREFIX: export file prefix (default: igcdgz)

Periods:
  - PERIOD_START, PERIOD_END: inclusive YYYY-MM range (default: 2023-04..2024-06)

Rule store:
  - STORE_PATH: BadgerDB directory (default: /data/rules)
  - STORE_IN_MEMORY: keep rules in memory only (default: false)
  - STORE_SYNC_WRITES, STORE_COMPRESSION
  - STORE_MAX_CONFLICT_RETRIES (default: 8)
  - MERGE_BREAKER_FAILURE_THRESHOLD (default: 5)

Pipeline and schedule:
  - PIPELINE_ANNOTATE (default: true)
  - SCHEDULE_CRON (default: "0 3 1 * *")
  - SCHEDULE_RUN_ON_STARTUP (default: true)
  - SCHEDULE_RUN_TIMEOUT (default: 30m)

HTTP server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8787)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	miner, err := mining.New(cfg.MiningConfig(), logger)
*/
package config
