// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

/*
Package pipeline runs the monthly mining job.

For one period the Runner loads order lines, aggregates them into baskets,
mines association rules, builds the rule table, merges it into the rule
store and, optionally, annotates every basket with its suggested next
product.

# Failure Isolation

Every period ends with an Outcome:

  - merged: rules were written to the store
  - no_data: the source had no lines for the period
  - no_rules: mining failed or produced no rules
  - failed: the source could not be read
  - connection_error: the rule store could not be reached

Only connection_error (and cancellation) is returned as an error. RunRange
processes every period regardless and joins the connection errors:

	runner := pipeline.NewRunner(src, miner, merger, pipeline.Config{Annotate: true}, logger)
	reports, err := runner.RunRange(ctx, period.Range(start, end))
	if errors.Is(err, store.ErrStoreUnavailable) {
	    os.Exit(1)
	}

Each period runs under its own correlation ID, attached to every log line
the run emits.
*/
package pipeline
