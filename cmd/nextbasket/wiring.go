// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package main

import (
	"fmt"

	"github.com/tomtom215/nextbasket/internal/config"
	"github.com/tomtom215/nextbasket/internal/logging"
	"github.com/tomtom215/nextbasket/internal/mining"
	"github.com/tomtom215/nextbasket/internal/pipeline"
	"github.com/tomtom215/nextbasket/internal/source"
	"github.com/tomtom215/nextbasket/internal/store"
)

// components are the pieces shared by run and serve.
type components struct {
	source source.Source
	runner *pipeline.Runner
}

func (c *components) Close() {
	if err := c.source.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing record source")
	}
}

// buildPipeline wires source, miner and merger into a runner that writes
// through connect.
func buildPipeline(cfg *config.Config, connect store.Connector) (*components, error) {
	miner, err := mining.New(cfg.MiningConfig(), logging.Logger())
	if err != nil {
		return nil, err
	}

	src, err := source.New(cfg.SourceConfig(), logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("record source: %w", err)
	}

	merger := store.NewMerger(connect, cfg.MergerConfig(), logging.Logger())
	runner := pipeline.NewRunner(src, miner, merger, pipeline.Config{Annotate: cfg.Pipeline.Annotate}, logging.Logger())

	return &components{source: src, runner: runner}, nil
}

// openStore opens the configured Badger store for the life of the process.
func openStore(cfg *config.Config) (*store.BadgerStore, error) {
	st, err := store.OpenBadger(cfg.StoreConfig())
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("path", cfg.Store.Path).
		Bool("in_memory", cfg.Store.InMemory).
		Msg("Rule store opened")
	return st, nil
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing rule store")
	}
}
