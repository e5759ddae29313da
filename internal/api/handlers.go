// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/pipeline"
	"github.com/tomtom215/nextbasket/internal/recommend"
	"github.com/tomtom215/nextbasket/internal/store"
	"github.com/tomtom215/nextbasket/internal/validation"
)

// maxRequestBody caps POST bodies.
const maxRequestBody = 1 << 20

// Handler serves the API endpoints.
type Handler struct {
	store   store.Store
	engine  *recommend.Engine
	history *pipeline.History
}

// NewHandler creates a Handler. Suggestions are answered from st.
// history may be nil when no scheduled pipeline runs in this process.
func NewHandler(st store.Store, history *pipeline.History) *Handler {
	return &Handler{
		store:   st,
		engine:  recommend.NewEngine(recommend.NewStoreSource(st)),
		history: history,
	}
}

// Health reports whether the rule store answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeStoreUnavailable, "rule store is unavailable", err)
		return
	}
	respondSuccess(w, map[string]string{"status": "ok"})
}

// GetRule returns the stored rule whose antecedent is the basket query
// parameter, a comma-separated list of product codes.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	items := parseBasketParam(r.URL.Query().Get("basket"))
	if items.Empty() {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "basket query parameter is required", nil)
		return
	}

	rule, err := h.store.Lookup(r.Context(), items)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if rule == nil {
		respondError(w, r, http.StatusNotFound, CodeRuleNotFound, "no rule for basket "+items.String(), nil)
		return
	}
	respondSuccess(w, rule)
}

// ListRules returns every stored rule.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.List(r.Context())
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondList(w, all)
}

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	Basket []string `json:"basket" validate:"required,min=1,max=200,dive,required"`
}

// RecommendResponse is the answer to a RecommendRequest.
type RecommendResponse struct {
	Basket     basket.ItemSet      `json:"basket"`
	Product    string              `json:"product,omitempty"`
	Confidence float64             `json:"confidence"`
	Match      recommend.MatchKind `json:"match"`
}

// Recommend suggests the next product for a basket.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "request body must be a JSON object", nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	items := basket.NewItemSet(req.Basket...)
	suggestion, err := h.engine.Suggest(r.Context(), items)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondSuccess(w, RecommendResponse{
		Basket:     items,
		Product:    suggestion.Product,
		Confidence: suggestion.Confidence,
		Match:      suggestion.Match,
	})
}

// LatestRun returns the report of the most recent pipeline run.
func (h *Handler) LatestRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, r, http.StatusNotFound, CodeNoRunYet, "no pipeline runs in this process", nil)
		return
	}
	run, ok := h.history.Last()
	if !ok {
		respondError(w, r, http.StatusNotFound, CodeNoRunYet, "no pipeline run has finished yet", nil)
		return
	}
	respondSuccess(w, run)
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrStoreUnavailable) {
		respondError(w, r, http.StatusServiceUnavailable, CodeStoreUnavailable, "rule store is unavailable", err)
		return
	}
	respondError(w, r, http.StatusInternalServerError, CodeInternal, "failed to read rules", err)
}

// parseBasketParam splits "A, B,,C" into {A, B, C}.
func parseBasketParam(raw string) basket.ItemSet {
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	return basket.NewItemSet(codes...)
}
