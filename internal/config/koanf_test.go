// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a missing file so a stray config.yaml
// cannot leak into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Mining.MinSupportRatio != 0.005 {
		t.Errorf("Mining.MinSupportRatio = %v, want 0.005", cfg.Mining.MinSupportRatio)
	}
	if cfg.Mining.MinConfidenceRatio != 0.005 {
		t.Errorf("Mining.MinConfidenceRatio = %v, want 0.005", cfg.Mining.MinConfidenceRatio)
	}
	if cfg.Source.Kind != "json" || cfg.Source.Prefix != "igcdgz" {
		t.Errorf("Source = %+v, want json/igcdgz", cfg.Source)
	}
	if cfg.Periods.Start != "2023-04" || cfg.Periods.End != "2024-06" {
		t.Errorf("Periods = %+v, want 2023-04..2024-06", cfg.Periods)
	}
	if cfg.Store.MaxConflictRetries != 8 {
		t.Errorf("Store.MaxConflictRetries = %d, want 8", cfg.Store.MaxConflictRetries)
	}
	if cfg.Merge.BreakerFailureThreshold != 5 {
		t.Errorf("Merge.BreakerFailureThreshold = %d, want 5", cfg.Merge.BreakerFailureThreshold)
	}
	if cfg.Schedule.RunTimeout != 30*time.Minute {
		t.Errorf("Schedule.RunTimeout = %v, want 30m", cfg.Schedule.RunTimeout)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("Server.Port = %d, want 8787", cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if !reflect.DeepEqual(cfg, defaultConfig()) {
		t.Errorf("LoadWithKoanf() = %+v, want defaults %+v", cfg, defaultConfig())
	}
	if got := len(cfg.PeriodRange()); got != 15 {
		t.Errorf("PeriodRange() len = %d, want 15", got)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("MIN_SUPPORT_RATIO", "0.01")
	t.Setenv("MIN_CONFIDENCE_RATIO", "0.2")
	t.Setenv("SOURCE_KIND", "duckdb")
	t.Setenv("DATA_DIRECTORY", "/srv/exports")
	t.Setenv("PERIOD_START", "2024-01")
	t.Setenv("PERIOD_END", "2024-03")
	t.Setenv("STORE_IN_MEMORY", "true")
	t.Setenv("MERGE_BREAKER_FAILURE_THRESHOLD", "2")
	t.Setenv("SCHEDULE_RUN_TIMEOUT", "5m")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Mining.MinSupportRatio != 0.01 || cfg.Mining.MinConfidenceRatio != 0.2 {
		t.Errorf("Mining = %+v, want 0.01/0.2", cfg.Mining)
	}
	if cfg.Source.Kind != "duckdb" || cfg.Source.Directory != "/srv/exports" {
		t.Errorf("Source = %+v, want duckdb in /srv/exports", cfg.Source)
	}
	if got := cfg.PeriodRange(); len(got) != 3 || got[0].String() != "2024-01" {
		t.Errorf("PeriodRange() = %v, want 2024-01..2024-03", got)
	}
	if !cfg.Store.InMemory {
		t.Error("Store.InMemory = false, want true")
	}
	if cfg.Merge.BreakerFailureThreshold != 2 {
		t.Errorf("Merge.BreakerFailureThreshold = %d, want 2", cfg.Merge.BreakerFailureThreshold)
	}
	if cfg.Schedule.RunTimeout != 5*time.Minute {
		t.Errorf("Schedule.RunTimeout = %v, want 5m", cfg.Schedule.RunTimeout)
	}
	if cfg.Server.ListenAddr() != "0.0.0.0:9000" {
		t.Errorf("ListenAddr() = %q, want 0.0.0.0:9000", cfg.Server.ListenAddr())
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nextbasket.yaml")
	content := `
mining:
  min_support_ratio: 0.02
source:
  directory: /var/lib/orders
  prefix: shop
periods:
  start: "2023-10"
  end: "2023-12"
server:
  cors_origins:
    - https://shop.example
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("DATA_PREFIX", "override")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Mining.MinSupportRatio != 0.02 {
		t.Errorf("Mining.MinSupportRatio = %v, want 0.02", cfg.Mining.MinSupportRatio)
	}
	if cfg.Mining.MinConfidenceRatio != 0.005 {
		t.Errorf("Mining.MinConfidenceRatio = %v, want default 0.005", cfg.Mining.MinConfidenceRatio)
	}
	if cfg.Source.Directory != "/var/lib/orders" {
		t.Errorf("Source.Directory = %q, want /var/lib/orders", cfg.Source.Directory)
	}
	if cfg.Source.Prefix != "override" {
		t.Errorf("Source.Prefix = %q, want env override", cfg.Source.Prefix)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"https://shop.example"}) {
		t.Errorf("Server.CORSOrigins = %v, want [https://shop.example]", cfg.Server.CORSOrigins)
	}
}

func TestLoadWithKoanf_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("mining: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() error = nil, want parse error")
	}
}

func TestLoadWithKoanf_ValidationFailure(t *testing.T) {
	isolate(t)
	t.Setenv("MIN_SUPPORT_RATIO", "1.5")

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() error = nil, want validation error")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"MIN_SUPPORT_RATIO", "mining.min_support_ratio"},
		{"min_confidence_ratio", "mining.min_confidence_ratio"},
		{"DATA_DIRECTORY", "source.directory"},
		{"STORE_PATH", "store.path"},
		{"SCHEDULE_CRON", "schedule.cron"},
		{"HTTP_PORT", "server.port"},
		{"DISABLE_RATE_LIMIT", "server.rate_limit_disabled"},
		{"LOG_FORMAT", "logging.format"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile_EnvPathMissing(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Chdir(dir)

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("findConfigFile() = %q, want config.yml", got)
	}
}
