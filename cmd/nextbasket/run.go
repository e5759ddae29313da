// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package main

import (
	"context"

	"github.com/tomtom215/nextbasket/internal/config"
	"github.com/tomtom215/nextbasket/internal/logging"
	"github.com/tomtom215/nextbasket/internal/pipeline"
	"github.com/tomtom215/nextbasket/internal/store"
)

// run processes the configured period range once.
func run(ctx context.Context, cfg *config.Config) int {
	reports, err := runOnce(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Pipeline finished with store failures")
		return 1
	}

	summary := pipeline.Summarize(reports)
	logging.Info().
		Int("periods", len(reports)).
		Int("merged", summary[pipeline.OutcomeMerged]).
		Int("no_data", summary[pipeline.OutcomeNoData]).
		Int("no_rules", summary[pipeline.OutcomeNoRules]).
		Int("failed", summary[pipeline.OutcomeFailed]).
		Msg("Pipeline finished")
	return 0
}

// runOnce wires a pipeline and runs it over cfg's periods. A persistent
// store is opened per merge; an in-memory one must outlive every period
// and is opened once.
func runOnce(ctx context.Context, cfg *config.Config) ([]*pipeline.Report, error) {
	connect := store.BadgerConnector(cfg.StoreConfig())
	if cfg.Store.InMemory {
		st, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		defer closeStore(st)
		connect = store.Shared(st)
	}

	c, err := buildPipeline(cfg, connect)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return c.runner.RunRange(ctx, cfg.PeriodRange())
}
