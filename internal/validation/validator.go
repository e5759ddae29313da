// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/tomtom215/nextbasket/internal/period"
)

// ErrorCode is the API error code for failed validation.
const ErrorCode = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// RequestValidationError collects every failed field of one struct.
type RequestValidationError struct {
	Fields []FieldError
}

// Error joins the field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// APIError is the API error body for a validation failure.
type APIError struct {
	Code    string
	Message string
	Fields  []FieldError
}

// ToAPIError converts the failure into the API error format.
func (ve *RequestValidationError) ToAPIError() *APIError {
	return &APIError{
		Code:    ErrorCode,
		Message: ve.Error(),
		Fields:  ve.Fields,
	}
}

// GetValidator returns the shared validator, creating it on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails for an empty tag or nil func
		_ = validate.RegisterValidation("period", validatePeriod)
		_ = validate.RegisterValidation("cron", validateCron)
	})
	return validate
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCron parses a standard five-field cron expression or a descriptor
// such as "@monthly".
func ParseCron(spec string) (cron.Schedule, error) {
	return cronParser.Parse(spec)
}

func validatePeriod(fl validator.FieldLevel) bool {
	_, err := period.Parse(fl.Field().String())
	return err == nil
}

func validateCron(fl validator.FieldLevel) bool {
	_, err := ParseCron(fl.Field().String())
	return err == nil
}

// ValidateStruct validates s. It returns nil when s is valid.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestValidationError{Fields: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return &RequestValidationError{Fields: fields}
}

// messages maps tags to templates taking the field name and, where the
// template has a second verb, the tag parameter.
var messages = map[string]string{
	"required": "%s is required",
	"period":   "%s must be a month in YYYY-MM form",
	"cron":     "%s must be a five-field cron expression",
	"oneof":    "%s must be one of: %s",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be greater than or equal to %s",
	"lt":       "%s must be less than %s",
	"lte":      "%s must be less than or equal to %s",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
}

// translate renders fe as a sentence.
func translate(fe validator.FieldError) string {
	field := fe.Namespace()
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	if strings.Count(tmpl, "%s") == 1 {
		return fmt.Sprintf(tmpl, field)
	}
	if fe.Kind().String() == "slice" && (fe.Tag() == "min" || fe.Tag() == "max") {
		return fmt.Sprintf(tmpl+" items", field, fe.Param())
	}
	return fmt.Sprintf(tmpl, field, fe.Param())
}
