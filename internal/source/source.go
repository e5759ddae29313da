// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package source loads the order lines of one period from monthly
// order-detail exports.
//
// A period with no export file, or an export that holds no lines, yields an
// empty slice and a nil error: absent data is not a failure.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/period"
)

// Source kinds.
const (
	KindJSON   = "json"
	KindDuckDB = "duckdb"
)

// ErrUnknownKind indicates an unsupported source kind.
var ErrUnknownKind = errors.New("unknown source kind")

// Source yields the order lines of a period.
type Source interface {
	Lines(ctx context.Context, p period.Period) ([]basket.OrderLine, error)
	Close() error
}

// Config selects and locates a Source.
type Config struct {
	// Kind is KindJSON or KindDuckDB.
	Kind string

	// Directory holds the export files.
	Directory string

	// Prefix is the export file name prefix.
	Prefix string
}

// New creates the Source named by cfg.Kind.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg Config, logger zerolog.Logger) (Source, error) {
	switch cfg.Kind {
	case KindJSON, "":
		return NewFileSource(cfg.Directory, cfg.Prefix, logger), nil
	case KindDuckDB:
		return NewDuckDBSource(cfg.Directory, cfg.Prefix, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// FileName returns the export file name for p. The month is not zero-padded.
func FileName(prefix string, p period.Period) string {
	return fmt.Sprintf("%s_orderdetail_%d_%d.json", prefix, p.Year, int(p.Month))
}

func filePath(directory, prefix string, p period.Period) string {
	return filepath.Join(directory, FileName(prefix, p))
}
