// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/logging"
	"github.com/tomtom215/nextbasket/internal/metrics"
	"github.com/tomtom215/nextbasket/internal/mining"
	"github.com/tomtom215/nextbasket/internal/period"
	"github.com/tomtom215/nextbasket/internal/recommend"
	"github.com/tomtom215/nextbasket/internal/rules"
	"github.com/tomtom215/nextbasket/internal/source"
	"github.com/tomtom215/nextbasket/internal/store"
)

// Outcome classifies how a period ended.
type Outcome string

const (
	OutcomeMerged    Outcome = metrics.OutcomeMerged
	OutcomeNoData    Outcome = metrics.OutcomeNoData
	OutcomeNoRules   Outcome = metrics.OutcomeNoRules
	OutcomeFailed    Outcome = metrics.OutcomeFailed
	OutcomeConnError Outcome = metrics.OutcomeConnError
)

// Config controls optional pipeline steps.
type Config struct {
	// Annotate attaches a suggestion to every basket of the period.
	Annotate bool
}

// Report describes one processed period.
type Report struct {
	Period        period.Period `json:"period"`
	CorrelationID string        `json:"correlation_id"`
	Outcome       Outcome       `json:"outcome"`

	Lines            int `json:"lines"`
	Baskets          int `json:"baskets"`
	FrequentItemsets int `json:"frequent_itemsets"`
	Rules            int `json:"rules"`

	Merge store.MergeReport `json:"merge"`

	// Annotations is set only when annotation is enabled.
	Annotations []recommend.Annotation `json:"annotations,omitempty"`

	// Error describes why the period did not merge, if it failed.
	Error string `json:"error,omitempty"`

	Duration time.Duration `json:"duration"`
}

// Runner executes the pipeline for one period at a time.
type Runner struct {
	source source.Source
	miner  *mining.Miner
	merger *store.Merger
	config Config
	logger zerolog.Logger
}

// NewRunner wires the pipeline stages together.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRunner(src source.Source, miner *mining.Miner, merger *store.Merger, cfg Config, logger zerolog.Logger) *Runner {
	return &Runner{
		source: src,
		miner:  miner,
		merger: merger,
		config: cfg,
		logger: logger.With().Str("component", "pipeline").Logger(),
	}
}

// RunPeriod processes p. The returned error is non-nil only when the rule
// store was unreachable or ctx ended; every other failure is recorded in the
// report.
func (r *Runner) RunPeriod(ctx context.Context, p period.Period) (report *Report, err error) {
	start := time.Now()

	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	ctx = logging.ContextWithLogger(ctx, r.logger)
	logger := logging.CtxWith(ctx).Str("period", p.String()).Logger()

	report = &Report{
		Period:        p,
		CorrelationID: logging.CorrelationIDFromContext(ctx),
	}
	defer func() {
		report.Duration = time.Since(start)
		if err != nil && report.Error == "" {
			report.Error = err.Error()
		}
		if report.Outcome != "" {
			metrics.RecordPeriod(string(report.Outcome))
		}
	}()

	logger.Info().Msg("processing period")

	lines, err := r.source.Lines(ctx, p)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		logger.Error().Err(err).Msg("failed to load order lines")
		report.Outcome = OutcomeFailed
		report.Error = err.Error()
		return report, nil
	}
	report.Lines = len(lines)

	baskets := basket.Aggregate(lines)
	report.Baskets = len(baskets)
	metrics.BasketsLoaded.Add(float64(len(baskets)))

	if len(baskets) == 0 {
		logger.Info().Msg("no baskets for period")
		report.Outcome = OutcomeNoData
		return report, nil
	}

	res, err := r.miner.Mine(ctx, basket.ItemSets(baskets))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		logger.Warn().Err(err).Int("baskets", len(baskets)).Msg("mining produced no rules")
		report.Outcome = OutcomeNoRules
		report.Error = err.Error()
		return report, nil
	}
	metrics.RecordMining(res.Duration, len(res.Rules))
	report.FrequentItemsets = len(res.FrequentItemsets)
	report.Rules = len(res.Rules)

	table := rules.Build(res.Rules)
	if table.Empty() {
		logger.Info().
			Int("baskets", len(baskets)).
			Int("frequent_itemsets", len(res.FrequentItemsets)).
			Msg("no rules reached the confidence threshold")
		report.Outcome = OutcomeNoRules
		return report, nil
	}

	report.Merge, err = r.merger.Merge(ctx, table)
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			logger.Error().Err(err).Int("rules", table.Len()).Msg("rule store unreachable, rules for period lost")
			report.Outcome = OutcomeConnError
			return report, fmt.Errorf("period %s: %w", p, err)
		}
		return report, err
	}

	if r.config.Annotate {
		engine := recommend.NewEngine(recommend.NewTableSource(table))
		report.Annotations, err = engine.Annotate(ctx, baskets)
		if err != nil {
			return report, err
		}
	}

	report.Outcome = OutcomeMerged
	logger.Info().
		Int("baskets", report.Baskets).
		Int("rules", report.Rules).
		Int("inserted", report.Merge.Inserted).
		Int("updated", report.Merge.Updated).
		Int("failed_writes", report.Merge.Failed).
		Msg("period complete")

	return report, nil
}

// RunRange processes periods in order. A failing period never stops the
// range; the joined error lists the periods whose rules could not reach the
// store. Cancellation stops before the next period.
func (r *Runner) RunRange(ctx context.Context, periods []period.Period) ([]*Report, error) {
	reports := make([]*Report, 0, len(periods))
	var errs []error

	for _, p := range periods {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		report, err := r.RunPeriod(ctx, p)
		reports = append(reports, report)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}

	summary := Summarize(reports)
	r.logger.Info().
		Int("periods", len(reports)).
		Int("merged", summary[OutcomeMerged]).
		Int("no_data", summary[OutcomeNoData]).
		Int("no_rules", summary[OutcomeNoRules]).
		Int("failed", summary[OutcomeFailed]).
		Int("connection_errors", summary[OutcomeConnError]).
		Msg("period range complete")

	return reports, errors.Join(errs...)
}

// Summarize counts reports by outcome.
func Summarize(reports []*Report) map[Outcome]int {
	out := make(map[Outcome]int)
	for _, rep := range reports {
		if rep != nil {
			out[rep.Outcome]++
		}
	}
	return out
}
