// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/period"
)

// FileSource decodes export files directly.
type FileSource struct {
	directory string
	prefix    string
	logger    zerolog.Logger
}

// NewFileSource creates a FileSource reading from directory.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewFileSource(directory, prefix string, logger zerolog.Logger) *FileSource {
	return &FileSource{
		directory: directory,
		prefix:    prefix,
		logger:    logger.With().Str("component", "file_source").Logger(),
	}
}

// Lines implements Source. A missing or malformed file yields no lines.
func (s *FileSource) Lines(ctx context.Context, p period.Period) ([]basket.OrderLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filePath(s.directory, s.prefix, p)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info().Str("path", path).Str("period", p.String()).Msg("no export file for period")
		return []basket.OrderLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var lines []basket.OrderLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("malformed export file, treating as empty")
		return []basket.OrderLine{}, nil
	}
	if lines == nil {
		lines = []basket.OrderLine{}
	}

	s.logger.Debug().Str("path", path).Int("lines", len(lines)).Msg("export file loaded")
	return lines, nil
}

// Close implements Source.
func (s *FileSource) Close() error {
	return nil
}
