// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package pipeline

import (
	"sync"
	"time"
)

// Run is the record of one RunRange call.
type Run struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Summary    map[Outcome]int `json:"summary"`
	Reports    []*Report       `json:"reports"`
	Error      string          `json:"error,omitempty"`
}

// History keeps the most recent Run. It is safe for concurrent use.
type History struct {
	mu   sync.RWMutex
	last *Run
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{}
}

// Record stores the outcome of a RunRange call started at startedAt.
func (h *History) Record(startedAt time.Time, reports []*Report, err error) *Run {
	run := &Run{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Summary:    Summarize(reports),
		Reports:    reports,
	}
	if err != nil {
		run.Error = err.Error()
	}

	h.mu.Lock()
	h.last = run
	h.mu.Unlock()
	return run
}

// Last returns the most recent run, or false if none has finished.
func (h *History) Last() (*Run, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.last != nil
}
