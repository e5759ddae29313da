// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package api

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nextbasket/internal/logging"
	"github.com/tomtom215/nextbasket/internal/validation"
)

// Error codes returned in the envelope.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeRuleNotFound     = "RULE_NOT_FOUND"
	CodeNoRunYet         = "NO_RUN_YET"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Status   string     `json:"status"`
	Data     any        `json:"data"`
	Metadata Metadata   `json:"metadata"`
	Error    *ErrorBody `json:"error,omitempty"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// respondJSON writes response with status and an ETag over the body.
func respondJSON(w http.ResponseWriter, status int, response *Response) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag hashes data with FNV-1a.
func generateETag(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return `"` + strconv.FormatUint(uint64(h.Sum32()), 16) + `"`
}

func respondSuccess(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, &Response{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	})
}

func respondList[T any](w http.ResponseWriter, items []T) {
	count := len(items)
	respondJSON(w, http.StatusOK, &Response{
		Status:   "success",
		Data:     items,
		Metadata: Metadata{Timestamp: time.Now().UTC(), Count: &count},
	})
}

// respondError writes an error envelope. err, when set, is logged with the
// request's correlation fields and never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("code", code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("API error")
	}

	respondJSON(w, status, &Response{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error:    &ErrorBody{Code: code, Message: message},
	})
}

func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &Response{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error: &ErrorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Fields:  apiErr.Fields,
		},
	})
}

// sanitizeLogValue strips line breaks so request data cannot forge log lines.
func sanitizeLogValue(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}
