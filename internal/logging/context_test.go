// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateIDs(t *testing.T) {
	c1, c2 := GenerateCorrelationID(), GenerateCorrelationID()
	if len(c1) != 8 || c1 == c2 {
		t.Errorf("GenerateCorrelationID() = %q, %q, want distinct 8-char IDs", c1, c2)
	}

	r := GenerateRequestID()
	if len(r) != 36 {
		t.Errorf("GenerateRequestID() len = %d, want 36", len(r))
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" {
		t.Error("empty context returned IDs")
	}

	ctx = ContextWithCorrelationID(ctx, "run-1")
	ctx = ContextWithRequestID(ctx, "req-1")

	if got := CorrelationIDFromContext(ctx); got != "run-1" {
		t.Errorf("CorrelationIDFromContext() = %q, want run-1", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want req-1", got)
	}

	if got := CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background())); len(got) != 8 {
		t.Errorf("ContextWithNewCorrelationID() id = %q", got)
	}
}

func TestCtx_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithCorrelationID(ctx, "abc12345")
	ctx = ContextWithRequestID(ctx, "req-9")

	Ctx(ctx).Info().Msg("merging")

	out := buf.String()
	for _, want := range []string{`"correlation_id":"abc12345"`, `"request_id":"req-9"`, "merging"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestCtxWith_ExtraFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithCorrelationID(ctx, "run-2")

	logger := CtxWith(ctx).Str("period", "2024-01").Logger()
	logger.Warn().Msg("no data")

	out := buf.String()
	if !strings.Contains(out, `"period":"2024-01"`) || !strings.Contains(out, `"correlation_id":"run-2"`) {
		t.Errorf("output = %s", out)
	}
}

func TestLoggerFromContext_FallsBackToGlobal(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	logger := LoggerFromContext(context.Background())
	logger.Info().Msg("global")

	if !strings.Contains(buf.String(), "global") {
		t.Errorf("global logger not used: %s", buf.String())
	}
}
