// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package logging provides the process-wide zerolog logger for Nextbasket.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("period", "2023-04").Msg("Pipeline starting")
//	logging.Error().Err(err).Msg("Merge failed")
//
// # Correlation
//
// Each pipeline run and each API request carries an ID in its context.
// Ctx returns a logger with those IDs attached:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Mining period")
//	// {"level":"info","correlation_id":"1b2c3d4e","message":"Mining period"}
//
// # Components
//
// Long-lived components receive a zerolog.Logger and derive their own
// "component" field, or take one from WithComponent:
//
//	miner, err := mining.New(cfg, logging.WithComponent("pipeline"))
//
// # slog Bridge
//
// SlogHandler routes log/slog records into zerolog so that slog-only
// libraries such as sutureslog share the same output.
package logging
