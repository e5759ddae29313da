// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/metrics"
	"github.com/tomtom215/nextbasket/internal/rules"
)

// DefaultBreakerFailureThreshold is the number of consecutive failed writes
// after which a merge gives up on the store.
const DefaultBreakerFailureThreshold = 5

// MergerConfig configures a Merger.
type MergerConfig struct {
	// BreakerFailureThreshold is the number of consecutive failed writes that
	// opens the circuit. Zero uses DefaultBreakerFailureThreshold.
	BreakerFailureThreshold uint32
}

// MergeReport summarizes one merge. Inserted, Updated and Failed count
// antecedents, since each antecedent is written once.
type MergeReport struct {
	// Rows is the number of table rows considered.
	Rows int `json:"rows"`

	// Antecedents is the number of distinct antecedents among the rows.
	Antecedents int `json:"antecedents"`

	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`

	// Failed counts antecedents whose write was skipped after an error.
	Failed int `json:"failed"`
}

// Written returns the number of antecedents persisted.
func (r MergeReport) Written() int {
	return r.Inserted + r.Updated
}

// Merger folds rule tables into a Store.
type Merger struct {
	connect Connector
	config  MergerConfig
	logger  zerolog.Logger
}

// NewMerger creates a Merger that opens its store through connect.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMerger(connect Connector, cfg MergerConfig, logger zerolog.Logger) *Merger {
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = DefaultBreakerFailureThreshold
	}
	return &Merger{
		connect: connect,
		config:  cfg,
		logger:  logger.With().Str("component", "merger").Logger(),
	}
}

// Merge folds one mining run's table into the store.
//
// The merge proceeds in these steps:
//  1. An empty table returns a zero report without opening the store.
//  2. The store is opened through the Connector and pinged.
//  3. Rows are grouped by antecedent in table order (see groupRows).
//  4. Each group is written with a single Upsert: the group's best Proba is
//     appended to the history and its consequents are unioned in, best
//     first. A run therefore adds exactly one history entry per antecedent.
//  5. The store is closed, whatever the outcome.
//
// Failing to open or ping the store, or the breaker opening mid-merge,
// returns a *ConnectionError that matches ErrStoreUnavailable. Any other
// write failure is logged, counted in the report, and skipped.
//
// Example usage:
//
//	merger := store.NewMerger(store.BadgerConnector(cfg), store.MergerConfig{}, logger)
//	report, err := merger.Merge(ctx, rules.Build(result.Rules))
//	if errors.Is(err, store.ErrStoreUnavailable) {
//	    // the period's rules were not persisted
//	}
func (m *Merger) Merge(ctx context.Context, table *rules.Table) (report MergeReport, err error) {
	if table.Empty() {
		return report, nil
	}

	st, err := m.connect(ctx)
	if err != nil {
		return report, asConnectionError(err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			m.logger.Warn().Err(cerr).Msg("failed to close rule store")
		}
	}()

	if err := st.Ping(ctx); err != nil {
		return report, asConnectionError(err)
	}

	cb := m.newBreaker()
	rows := table.Rows()
	groups := groupRows(rows)
	report.Rows = len(rows)
	report.Antecedents = len(groups)

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := cb.Execute(func() (UpsertResult, error) {
			return st.Upsert(ctx, g.basket, g.proba, g.next)
		})

		switch {
		case err == nil:
			if result == Inserted {
				report.Inserted++
			} else {
				report.Updated++
			}
			metrics.RecordStoreWrite(result.String())

		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			m.logger.Error().
				Int("written", report.Written()).
				Int("failed", report.Failed).
				Msg("rule store breaker open, aborting merge")
			return report, &ConnectionError{
				Err: fmt.Errorf("%d consecutive write failures: %w", m.config.BreakerFailureThreshold, err),
			}

		case errors.Is(err, ErrStoreUnavailable):
			return report, err

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return report, err

		default:
			report.Failed++
			metrics.RecordStoreWrite(metrics.WriteFailed)
			m.logger.Warn().
				Err(err).
				Str("basket", g.basket.String()).
				Msg("failed to merge rule, skipping")
		}
	}

	m.logger.Info().
		Int("rows", report.Rows).
		Int("antecedents", report.Antecedents).
		Int("inserted", report.Inserted).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Msg("rules merged")

	return report, nil
}

// ruleGroup is the single write made for one antecedent.
type ruleGroup struct {
	basket basket.ItemSet
	proba  float64
	next   []string
}

// groupRows collapses rows sharing an antecedent into one ruleGroup, in
// order of first appearance. Rows arrive Proba-descending, so the first
// row of a group carries its highest confidence and consequents are
// collected best first without duplicates.
func groupRows(rows []rules.Row) []ruleGroup {
	groups := make([]ruleGroup, 0, len(rows))
	index := make(map[string]int, len(rows))
	seen := make(map[string]map[string]bool, len(rows))

	for _, row := range rows {
		key := row.Basket.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			seen[key] = make(map[string]bool)
			groups = append(groups, ruleGroup{basket: row.Basket, proba: row.Proba})
		}
		for _, item := range row.NextProduct.Items() {
			if !seen[key][item] {
				seen[key][item] = true
				groups[i].next = append(groups[i].next, item)
			}
		}
	}
	return groups
}

// newBreaker creates a breaker scoped to one merge. It never half-opens
// within a merge, so once open every remaining write is rejected.
func (m *Merger) newBreaker() *gobreaker.CircuitBreaker[UpsertResult] {
	threshold := m.config.BreakerFailureThreshold
	metrics.StoreBreakerState.Set(stateToFloat(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[UpsertResult](gobreaker.Settings{
		Name:    "rule-store",
		Timeout: 24 * time.Hour,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},

		// Only write failures count; cancellation says nothing about the store
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			m.logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.StoreBreakerState.Set(stateToFloat(to))
		},
	})
}

// asConnectionError wraps err unless it already is a ConnectionError or a
// context error.
func asConnectionError(err error) error {
	var ce *ConnectionError
	if errors.As(err, &ce) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ConnectionError{Err: err}
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
