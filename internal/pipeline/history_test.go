// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package pipeline

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestHistory(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Last(); ok {
		t.Fatal("Last() on empty history found a run")
	}

	start := time.Now()
	reports := []*Report{
		{Outcome: OutcomeMerged},
		{Outcome: OutcomeNoData},
		{Outcome: OutcomeMerged},
	}
	h.Record(start, reports, nil)

	run, ok := h.Last()
	if !ok {
		t.Fatal("Last() found no run after Record")
	}
	if run.Summary[OutcomeMerged] != 2 || run.Summary[OutcomeNoData] != 1 {
		t.Errorf("Summary = %v, want 2 merged and 1 no_data", run.Summary)
	}
	if run.Error != "" {
		t.Errorf("Error = %q, want empty", run.Error)
	}
	if run.FinishedAt.Before(run.StartedAt) {
		t.Errorf("FinishedAt %v before StartedAt %v", run.FinishedAt, run.StartedAt)
	}

	h.Record(time.Now(), nil, errors.New("store down"))
	run, _ = h.Last()
	if run.Error != "store down" {
		t.Errorf("Error = %q, want store down", run.Error)
	}
}

func TestHistory_Concurrent(t *testing.T) {
	h := NewHistory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Record(time.Now(), []*Report{{Outcome: OutcomeMerged}}, nil)
		}()
		go func() {
			defer wg.Done()
			h.Last()
		}()
	}
	wg.Wait()

	if _, ok := h.Last(); !ok {
		t.Error("Last() found no run")
	}
}
