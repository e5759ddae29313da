// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package mining

import (
	"errors"
	"fmt"
)

var (
	// ErrMiningFailure matches every error returned by Miner.Mine.
	ErrMiningFailure = errors.New("mining failed")

	// ErrNoFrequentItems indicates no single item reached the minimum support.
	ErrNoFrequentItems = errors.New("no frequent items")
)

// MiningError reports a failed mining run. Callers treat it as "no rules
// for this run".
type MiningError struct {
	// Baskets is the number of baskets the run was given.
	Baskets int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *MiningError) Error() string {
	return fmt.Sprintf("mining %d baskets: %v", e.Baskets, e.Err)
}

// Unwrap exposes both ErrMiningFailure and the cause to errors.Is.
func (e *MiningError) Unwrap() []error {
	return []error{ErrMiningFailure, e.Err}
}
