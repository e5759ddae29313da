// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("DefaultConfig().Level = %q, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("DefaultConfig().Format = %q, want json", cfg.Format)
	}
	if cfg.Output == nil {
		t.Error("DefaultConfig().Output = nil")
	}
}

func TestInit_JSON(t *testing.T) {
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	Info().Str("period", "2023-04").Msg("pipeline starting")
	Debug().Msg("debug visible")

	out := buf.String()
	for _, want := range []string{`"level":"info"`, `"period":"2023-04"`, `"message":"pipeline starting"`, "debug visible"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestInit_LevelFilters(t *testing.T) {
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	Warn().Msg("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info written at warn level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not written: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "Trace"} {
		if !ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = false, want true", level)
		}
	}
	if ValidLevel("verbose") {
		t.Error("ValidLevel(verbose) = true, want false")
	}
}

func TestWithComponent(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	logger := WithComponent("merger")
	logger.Info().Msg("rules merged")

	if !strings.Contains(buf.String(), `"component":"merger"`) {
		t.Errorf("output missing component: %s", buf.String())
	}
}
