// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/nextbasket/config.yaml",
	"/etc/nextbasket/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults.
func defaultConfig() *Config {
	return &Config{
		Mining: MiningConfig{
			MinSupportRatio:    0.005,
			MinConfidenceRatio: 0.005,
		},
		Source: SourceConfig{
			Kind:      "json",
			Directory: "data1/data",
			Prefix:    "igcdgz",
		},
		Periods: PeriodsConfig{
			Start: "2023-04",
			End:   "2024-06",
		},
		Store: StoreConfig{
			Path:               "/data/rules",
			InMemory:           false,
			SyncWrites:         true,
			Compression:        true,
			MaxConflictRetries: 8,
		},
		Merge: MergeConfig{
			BreakerFailureThreshold: 5,
		},
		Pipeline: PipelineConfig{
			Annotate: true,
		},
		Schedule: ScheduleConfig{
			Cron:         "0 3 1 * *", // 03:00 on the first of each month
			RunOnStartup: true,
			RunTimeout:   30 * time.Minute,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8787,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration from, in increasing precedence:
//  1. Built-in defaults
//  2. An optional YAML config file
//  3. Environment variables
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MIN_SUPPORT_RATIO -> mining.min_support_ratio
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are the paths whose env values are comma-separated lists.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env strings for list fields.
// Values that arrived as YAML sequences are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unlisted variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	// Mining
	"min_support_ratio":    "mining.min_support_ratio",
	"min_confidence_ratio": "mining.min_confidence_ratio",

	// Record source
	"source_kind":    "source.kind",
	"data_directory": "source.directory",
	"data_prefix":    "source.prefix",

	// Periods
	"period_start": "periods.start",
	"period_end":   "periods.end",

	// Rule store
	"store_path":                      "store.path",
	"store_in_memory":                 "store.in_memory",
	"store_sync_writes":               "store.sync_writes",
	"store_compression":               "store.compression",
	"store_max_conflict_retries":      "store.max_conflict_retries",
	"merge_breaker_failure_threshold": "merge.breaker_failure_threshold",

	// Pipeline and schedule
	"pipeline_annotate":       "pipeline.annotate",
	"schedule_cron":           "schedule.cron",
	"schedule_run_on_startup": "schedule.run_on_startup",
	"schedule_run_timeout":    "schedule.run_timeout",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",
	"cors_origins":          "server.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path,
// or "" to skip it.
//
// Examples:
//   - MIN_SUPPORT_RATIO -> mining.min_support_ratio
//   - DATA_DIRECTORY -> source.directory
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller guards any shared *Config it swaps in the callback.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
