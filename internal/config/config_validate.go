// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package config

import (
	"fmt"

	"github.com/tomtom215/nextbasket/internal/logging"
	"github.com/tomtom215/nextbasket/internal/period"
	"github.com/tomtom215/nextbasket/internal/validation"
)

// Validate checks field constraints first, then rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validatePeriods(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validatePeriods requires start <= end.
func (c *Config) validatePeriods() error {
	start, err := period.Parse(c.Periods.Start)
	if err != nil {
		return fmt.Errorf("PERIOD_START: %w", err)
	}
	end, err := period.Parse(c.Periods.End)
	if err != nil {
		return fmt.Errorf("PERIOD_END: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("PERIOD_END %s is before PERIOD_START %s", end, start)
	}
	return nil
}

// validateStore requires a path unless the store is in memory.
func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level)
	}
	return nil
}
