// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package validation wraps go-playground/validator v10 with a shared
// validator instance, the custom tags Nextbasket needs and human-readable
// error messages.
//
// # Custom Tags
//
//   - period: a YYYY-MM month such as "2023-04"
//   - cron: a standard five-field cron expression
//
// # Usage
//
//	type RecommendRequest struct {
//	    Basket []string `validate:"required,min=1,dive,required"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
//	}
package validation
