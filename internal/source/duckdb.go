// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/rs/zerolog"
	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/period"
)

// readQuery reads an export file with fixed VARCHAR columns so numeric codes
// arrive as their decimal text and an empty array yields no rows.
const readQuery = `
	SELECT
		COALESCE(OrderCode, ''),
		COALESCE(CustomerCode, ''),
		COALESCE(ProductCode, '')
	FROM read_json(?, format = 'array', columns = {
		OrderCode: 'VARCHAR',
		CustomerCode: 'VARCHAR',
		ProductCode: 'VARCHAR'
	})`

// DuckDBSource reads export files through an in-memory DuckDB connection.
type DuckDBSource struct {
	db        *sql.DB
	directory string
	prefix    string
	logger    zerolog.Logger
}

// NewDuckDBSource opens an in-memory DuckDB connection for reading exports.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewDuckDBSource(directory, prefix string, logger zerolog.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	return &DuckDBSource{
		db:        db,
		directory: directory,
		prefix:    prefix,
		logger:    logger.With().Str("component", "duckdb_source").Logger(),
	}, nil
}

// Lines implements Source. A missing or unreadable file yields no lines.
func (s *DuckDBSource) Lines(ctx context.Context, p period.Period) ([]basket.OrderLine, error) {
	path := filePath(s.directory, s.prefix, p)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		s.logger.Info().Str("path", path).Str("period", p.String()).Msg("no export file for period")
		return []basket.OrderLine{}, nil
	}

	rows, err := s.db.QueryContext(ctx, readQuery, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("path", path).Msg("unreadable export file, treating as empty")
		return []basket.OrderLine{}, nil
	}
	defer rows.Close()

	lines := make([]basket.OrderLine, 0)
	for rows.Next() {
		var line basket.OrderLine
		var order, customer, product string
		if err := rows.Scan(&order, &customer, &product); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		line.OrderCode = basket.Code(order)
		line.CustomerCode = basket.Code(customer)
		line.ProductCode = basket.Code(product)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("path", path).Msg("unreadable export file, treating as empty")
		return []basket.OrderLine{}, nil
	}

	s.logger.Debug().Str("path", path).Int("lines", len(lines)).Msg("export file loaded")
	return lines, nil
}

// Close releases the DuckDB connection.
func (s *DuckDBSource) Close() error {
	return s.db.Close()
}
