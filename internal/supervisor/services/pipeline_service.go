// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/nextbasket/internal/period"
	"github.com/tomtom215/nextbasket/internal/pipeline"
)

// RangeRunner runs the pipeline over a list of periods.
// *pipeline.Runner satisfies it.
type RangeRunner interface {
	RunRange(ctx context.Context, periods []period.Period) ([]*pipeline.Report, error)
}

// PipelineServiceConfig controls when the pipeline runs.
type PipelineServiceConfig struct {
	// Schedule decides the next run time. See validation.ParseCron.
	Schedule cron.Schedule

	// RunOnStartup runs the range once as soon as the service starts.
	RunOnStartup bool

	// RunTimeout bounds a single run. Default: 30m
	RunTimeout time.Duration
}

// PipelineService runs the configured period range on a cron schedule.
// Runs never overlap: a tick that fires while a run is in progress is
// skipped. The outcome of every run is recorded in the History.
type PipelineService struct {
	runner  RangeRunner
	periods []period.Period
	history *pipeline.History
	config  PipelineServiceConfig
	logger  zerolog.Logger

	running atomic.Bool
	runs    atomic.Int64
	wg      sync.WaitGroup
}

// NewPipelineService creates the service. history may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipelineService(runner RangeRunner, periods []period.Period, history *pipeline.History, cfg PipelineServiceConfig, logger zerolog.Logger) *PipelineService {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	if history == nil {
		history = pipeline.NewHistory()
	}
	return &PipelineService{
		runner:  runner,
		periods: periods,
		history: history,
		config:  cfg,
		logger:  logger.With().Str("service", "pipeline").Logger(),
	}
}

// Serve implements suture.Service. It returns ctx.Err() once the scheduler
// has stopped and any run in progress has returned.
func (s *PipelineService) Serve(ctx context.Context) error {
	if s.config.Schedule == nil {
		return errors.New("pipeline service has no schedule")
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.Recover(cronLogger{s.logger})),
	)
	c.Schedule(s.config.Schedule, cron.FuncJob(func() { s.trigger(ctx, "schedule") }))

	s.logger.Info().
		Int("periods", len(s.periods)).
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("run_timeout", s.config.RunTimeout).
		Time("next_run", s.config.Schedule.Next(time.Now().UTC())).
		Msg("pipeline service starting")

	if s.config.RunOnStartup {
		s.trigger(ctx, "startup")
	}

	c.Start()
	<-ctx.Done()

	// Stop returns a context that is done once running jobs finish
	<-c.Stop().Done()
	s.wg.Wait()

	s.logger.Info().Int64("runs", s.runs.Load()).Msg("pipeline service stopped")
	return ctx.Err()
}

// trigger starts a run unless one is already in progress.
func (s *PipelineService) trigger(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Str("reason", reason).Msg("previous pipeline run still in progress, skipping")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.run(ctx, reason)
	}()
}

func (s *PipelineService) run(ctx context.Context, reason string) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Str("reason", reason).Msg("pipeline run starting")

	reports, err := s.runner.RunRange(runCtx, s.periods)
	rec := s.history.Record(start, reports, err)
	s.runs.Add(1)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Warn().Err(err)
	}
	event.
		Str("reason", reason).
		Int("merged", rec.Summary[pipeline.OutcomeMerged]).
		Int("connection_errors", rec.Summary[pipeline.OutcomeConnError]).
		Dur("duration", rec.FinishedAt.Sub(rec.StartedAt)).
		Msg("pipeline run finished")
}

// Runs returns how many runs have finished.
func (s *PipelineService) Runs() int64 {
	return s.runs.Load()
}

// History returns the run history the service records into.
func (s *PipelineService) History() *pipeline.History {
	return s.history
}

// String names the service in supervisor events.
func (s *PipelineService) String() string {
	return "pipeline-scheduler"
}

// cronLogger routes robfig/cron's logging into zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
