// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/nextbasket/internal/logging"
	"github.com/tomtom215/nextbasket/internal/mining"
	"github.com/tomtom215/nextbasket/internal/period"
	"github.com/tomtom215/nextbasket/internal/source"
	"github.com/tomtom215/nextbasket/internal/store"
)

// Config holds all application configuration.
type Config struct {
	Mining   MiningConfig   `koanf:"mining"`
	Source   SourceConfig   `koanf:"source"`
	Periods  PeriodsConfig  `koanf:"periods"`
	Store    StoreConfig    `koanf:"store"`
	Merge    MergeConfig    `koanf:"merge"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// MiningConfig holds the FP-growth thresholds.
type MiningConfig struct {
	MinSupportRatio    float64 `koanf:"min_support_ratio" validate:"gt=0,lte=1"`
	MinConfidenceRatio float64 `koanf:"min_confidence_ratio" validate:"gt=0,lte=1"`
}

// SourceConfig locates the monthly order-detail exports.
type SourceConfig struct {
	Kind      string `koanf:"kind" validate:"required,oneof=json duckdb"`
	Directory string `koanf:"directory" validate:"required"`
	Prefix    string `koanf:"prefix" validate:"required"`
}

// PeriodsConfig is the inclusive month range the pipeline processes.
type PeriodsConfig struct {
	Start string `koanf:"start" validate:"required,period"`
	End   string `koanf:"end" validate:"required,period"`
}

// StoreConfig configures the BadgerDB rule store.
type StoreConfig struct {
	Path               string `koanf:"path"`
	InMemory           bool   `koanf:"in_memory"`
	SyncWrites         bool   `koanf:"sync_writes"`
	Compression        bool   `koanf:"compression"`
	MaxConflictRetries int    `koanf:"max_conflict_retries" validate:"gte=0,lte=100"`
}

// MergeConfig configures how rule tables are merged into the store.
type MergeConfig struct {
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold" validate:"gte=1"`
}

// PipelineConfig toggles optional pipeline steps.
type PipelineConfig struct {
	Annotate bool `koanf:"annotate"`
}

// ScheduleConfig controls the recurring pipeline run in serve mode.
type ScheduleConfig struct {
	Cron         string        `koanf:"cron" validate:"required,cron"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	RunTimeout   time.Duration `koanf:"run_timeout" validate:"gt=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MiningConfig returns the miner thresholds.
func (c *Config) MiningConfig() mining.Config {
	return mining.Config{
		MinSupportRatio:    c.Mining.MinSupportRatio,
		MinConfidenceRatio: c.Mining.MinConfidenceRatio,
	}
}

// SourceConfig returns the record source settings.
func (c *Config) SourceConfig() source.Config {
	return source.Config{
		Kind:      c.Source.Kind,
		Directory: c.Source.Directory,
		Prefix:    c.Source.Prefix,
	}
}

// StoreConfig returns the BadgerDB settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Path:               c.Store.Path,
		InMemory:           c.Store.InMemory,
		SyncWrites:         c.Store.SyncWrites,
		Compression:        c.Store.Compression,
		MaxConflictRetries: c.Store.MaxConflictRetries,
	}
}

// MergerConfig returns the merge settings.
func (c *Config) MergerConfig() store.MergerConfig {
	return store.MergerConfig{BreakerFailureThreshold: c.Merge.BreakerFailureThreshold}
}

// LoggingConfig returns the logger settings.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Caller: c.Logging.Caller,
	}
}

// PeriodRange returns every configured period in order.
// It assumes Validate has passed.
func (c *Config) PeriodRange() []period.Period {
	start, err := period.Parse(c.Periods.Start)
	if err != nil {
		return nil
	}
	end, err := period.Parse(c.Periods.End)
	if err != nil {
		return nil
	}
	return period.Range(start, end)
}

// ListenAddr returns host:port for the HTTP server.
func (c *ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String summarizes the settings worth logging at startup.
func (c *Config) String() string {
	return fmt.Sprintf("source=%s:%s periods=%s..%s support=%v confidence=%v store=%s",
		c.Source.Kind, c.Source.Directory, c.Periods.Start, c.Periods.End,
		c.Mining.MinSupportRatio, c.Mining.MinConfidenceRatio, c.storeLabel())
}

func (c *Config) storeLabel() string {
	if c.Store.InMemory {
		return "memory"
	}
	return c.Store.Path
}
