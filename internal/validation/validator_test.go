// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

type sample struct {
	Ratio  float64  `validate:"gt=0,lte=1"`
	Kind   string   `validate:"required,oneof=json duckdb"`
	Start  string   `validate:"required,period"`
	Cron   string   `validate:"omitempty,cron"`
	Basket []string `validate:"required,min=1,dive,required"`
}

func validSample() sample {
	return sample{Ratio: 0.005, Kind: "json", Start: "2023-04", Cron: "0 3 1 * *", Basket: []string{"A"}}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *sample)
		wantTag string
		wantMsg string
	}{
		{name: "valid", mutate: func(*sample) {}},
		{name: "descriptor cron", mutate: func(s *sample) { s.Cron = "@monthly" }},
		{name: "zero ratio", mutate: func(s *sample) { s.Ratio = 0 }, wantTag: "gt", wantMsg: "must be greater than 0"},
		{name: "ratio above one", mutate: func(s *sample) { s.Ratio = 1.5 }, wantTag: "lte", wantMsg: "less than or equal to 1"},
		{name: "unknown kind", mutate: func(s *sample) { s.Kind = "csv" }, wantTag: "oneof", wantMsg: "one of: json duckdb"},
		{name: "bad period", mutate: func(s *sample) { s.Start = "2023-13" }, wantTag: "period", wantMsg: "YYYY-MM"},
		{name: "bad cron", mutate: func(s *sample) { s.Cron = "every day" }, wantTag: "cron", wantMsg: "cron expression"},
		{name: "six field cron", mutate: func(s *sample) { s.Cron = "0 0 3 1 * *" }, wantTag: "cron"},
		{name: "empty basket", mutate: func(s *sample) { s.Basket = []string{} }, wantTag: "min", wantMsg: "at least 1 items"},
		{name: "blank product", mutate: func(s *sample) { s.Basket = []string{"A", ""} }, wantTag: "required", wantMsg: "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSample()
			tt.mutate(&s)

			verr := ValidateStruct(&s)
			if tt.wantTag == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Tag != tt.wantTag {
				t.Fatalf("ValidateStruct() fields = %+v, want one %s failure", verr.Fields, tt.wantTag)
			}
			if tt.wantMsg != "" && !strings.Contains(verr.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", verr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	s := validSample()
	s.Kind = ""
	s.Start = ""

	apiErr := ValidateStruct(&s).ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrorCode)
	}
	if len(apiErr.Fields) != 2 {
		t.Errorf("Fields = %+v, want 2", apiErr.Fields)
	}
	if !strings.Contains(apiErr.Message, "sample.Kind is required") {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestParseCron(t *testing.T) {
	if _, err := ParseCron("0 3 1 * *"); err != nil {
		t.Errorf("ParseCron() error = %v", err)
	}
	if _, err := ParseCron("61 * * * *"); err == nil {
		t.Error("ParseCron(61 * * * *) error = nil")
	}
}
