// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/nextbasket/internal/api"
	"github.com/tomtom215/nextbasket/internal/config"
	"github.com/tomtom215/nextbasket/internal/logging"
	"github.com/tomtom215/nextbasket/internal/pipeline"
	"github.com/tomtom215/nextbasket/internal/store"
	"github.com/tomtom215/nextbasket/internal/supervisor"
	"github.com/tomtom215/nextbasket/internal/supervisor/services"
	"github.com/tomtom215/nextbasket/internal/validation"
)

// serve runs the scheduled pipeline and the HTTP API under the supervisor
// tree until ctx ends. The API and the merger share one store because
// Badger holds an exclusive lock on its directory.
func serve(ctx context.Context, cfg *config.Config) int {
	st, err := openStore(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open rule store")
		return 1
	}
	defer closeStore(st)

	c, err := buildPipeline(cfg, store.Shared(st))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to build pipeline")
		return 1
	}
	defer c.Close()

	tree, err := buildTree(cfg, st, c.runner)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	logging.Info().Str("addr", cfg.Server.ListenAddr()).Str("cron", cfg.Schedule.Cron).Msg("Serving")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		return 1
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Shutdown complete")
	return 0
}

func buildTree(cfg *config.Config, st store.Store, runner *pipeline.Runner) (*supervisor.SupervisorTree, error) {
	schedule, err := validation.ParseCron(cfg.Schedule.Cron)
	if err != nil {
		return nil, err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return nil, err
	}

	history := pipeline.NewHistory()
	tree.AddPipelineService(services.NewPipelineService(
		runner,
		cfg.PeriodRange(),
		history,
		services.PipelineServiceConfig{
			Schedule:     schedule,
			RunOnStartup: cfg.Schedule.RunOnStartup,
			RunTimeout:   cfg.Schedule.RunTimeout,
		},
		logging.Logger(),
	))

	mw := api.NewMiddleware(api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSMaxAge:         api.DefaultMiddlewareConfig().CORSMaxAge,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		RateLimitDisabled:  cfg.Server.RateLimitDisabled,
	})
	server := &http.Server{
		Addr:              cfg.Server.ListenAddr(),
		Handler:           api.NewRouter(api.NewHandler(st, history), mw),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))

	return tree, nil
}
