// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package period models the calendar months the pipeline processes.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod indicates a period string or value is malformed.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is one calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// Of returns the period containing t.
func Of(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Parse reads a period in YYYY-MM form. A single-digit month is accepted.
func Parse(s string) (Period, error) {
	year, month, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Period{}, fmt.Errorf("%w: %q: want YYYY-MM", ErrInvalidPeriod, s)
	}
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return Period{}, fmt.Errorf("%w: %q: bad year", ErrInvalidPeriod, s)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return Period{}, fmt.Errorf("%w: %q: bad month", ErrInvalidPeriod, s)
	}
	return Period{Year: y, Month: time.Month(m)}, nil
}

// Valid reports whether p names a real month.
func (p Period) Valid() bool {
	return p.Year > 0 && p.Month >= time.January && p.Month <= time.December
}

// String formats p as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Next returns the following month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Range returns every period from start to end inclusive, ascending.
// It is empty when start is after end.
func Range(start, end Period) []Period {
	out := make([]Period, 0)
	for p := start; !end.Before(p); p = p.Next() {
		out = append(out, p)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
