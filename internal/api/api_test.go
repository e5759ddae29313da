// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/pipeline"
	"github.com/tomtom215/nextbasket/internal/store"
)

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		Count *int `json:"count"`
	} `json:"metadata"`
	Error *ErrorBody `json:"error"`
}

// seededStore holds the rules mined from Scenario-style baskets.
func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	seed := []struct {
		key   []string
		proba float64
		next  string
	}{
		{[]string{"A"}, 0.75, "B"},
		{[]string{"B"}, 0.6, "C"},
		{[]string{"A", "B"}, 0.9, "C"},
		{[]string{"A"}, 0.8, "B"},
	}
	for _, s := range seed {
		if _, err := st.Upsert(ctx, basket.NewItemSet(s.key...), s.proba, []string{s.next}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	return st
}

func newTestServer(t *testing.T, st store.Store, history *pipeline.History, mwCfg MiddlewareConfig) http.Handler {
	t.Helper()
	return NewRouter(NewHandler(st, history), NewMiddleware(mwCfg))
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.RemoteAddr = "192.0.2.10:40000"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("response is not an envelope: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	st := seededStore(t)
	srv := newTestServer(t, st, nil, DefaultMiddlewareConfig())

	rec, env := do(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("GET /health = %d %s, want 200 success", rec.Code, env.Status)
	}
	if !strings.Contains(string(env.Data), `"ok"`) {
		t.Errorf("GET /health data = %s, want status ok", env.Data)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("GET /health has no X-Request-Id header")
	}

	_ = st.Close()
	rec, env = do(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /health on closed store = %d, want 503", rec.Code)
	}
	if env.Error == nil || env.Error.Code != CodeStoreUnavailable {
		t.Errorf("error = %+v, want %s", env.Error, CodeStoreUnavailable)
	}
}

func TestGetRule(t *testing.T) {
	srv := newTestServer(t, seededStore(t), nil, DefaultMiddlewareConfig())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantProba  []float64
	}{
		{"single item accumulates", "basket=A", http.StatusOK, "", []float64{0.75, 0.8}},
		{"order insensitive", "basket=B,A", http.StatusOK, "", []float64{0.9}},
		{"spaces and empties", "basket=%20A%20,,B", http.StatusOK, "", []float64{0.9}},
		{"absent rule", "basket=Z", http.StatusNotFound, CodeRuleNotFound, nil},
		{"missing parameter", "", http.StatusBadRequest, CodeBadRequest, nil},
		{"only commas", "basket=,,", http.StatusBadRequest, CodeBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, srv, http.MethodGet, "/api/v1/rules?"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("GET /api/v1/rules?%s = %d, want %d (%s)", tt.query, rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
				}
				return
			}

			var rule store.StoredRule
			if err := json.Unmarshal(env.Data, &rule); err != nil {
				t.Fatalf("decode rule: %v", err)
			}
			if len(rule.Proba) != len(tt.wantProba) {
				t.Fatalf("Proba = %v, want %v", rule.Proba, tt.wantProba)
			}
			for i := range tt.wantProba {
				if rule.Proba[i] != tt.wantProba[i] {
					t.Errorf("Proba = %v, want %v", rule.Proba, tt.wantProba)
				}
			}
		})
	}
}

func TestListRules(t *testing.T) {
	srv := newTestServer(t, seededStore(t), nil, DefaultMiddlewareConfig())

	rec, env := do(t, srv, http.MethodGet, "/api/v1/rules/all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/rules/all = %d, want 200", rec.Code)
	}
	if env.Metadata.Count == nil || *env.Metadata.Count != 3 {
		t.Errorf("metadata.count = %v, want 3", env.Metadata.Count)
	}

	var all []store.StoredRule
	if err := json.Unmarshal(env.Data, &all); err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("rules len = %d, want 3", len(all))
	}
	for i := 0; i+1 < len(all); i++ {
		if all[i].Basket.Key() > all[i+1].Basket.Key() {
			t.Errorf("rules not ordered by key: %v before %v", all[i].Basket, all[i+1].Basket)
		}
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", rec.Header().Get("Cache-Control"))
	}
}

func TestRecommend(t *testing.T) {
	srv := newTestServer(t, seededStore(t), nil, DefaultMiddlewareConfig())

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantProduct string
		wantMatch   string
		wantConf    float64
	}{
		{"exact match", `{"basket":["B","A"]}`, http.StatusOK, "C", "exact", 0.9},
		{"latest confidence", `{"basket":["A"]}`, http.StatusOK, "B", "exact", 0.8},
		{"fallback", `{"basket":["A","Q"]}`, http.StatusOK, "B", "fallback", 0.8},
		{"no rule", `{"basket":["Q"]}`, http.StatusOK, "", "none", 0},
		{"never suggests basket item", `{"basket":["B","C"]}`, http.StatusOK, "", "none", 0},
		{"empty basket", `{"basket":[]}`, http.StatusBadRequest, "", "", 0},
		{"blank code", `{"basket":["A",""]}`, http.StatusBadRequest, "", "", 0},
		{"missing field", `{}`, http.StatusBadRequest, "", "", 0},
		{"not json", `basket=A`, http.StatusBadRequest, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, srv, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("POST /api/v1/recommend %s = %d, want %d (%s)", tt.body, rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if env.Error == nil {
					t.Error("error body missing")
				}
				return
			}

			var got struct {
				Product    string  `json:"product"`
				Confidence float64 `json:"confidence"`
				Match      string  `json:"match"`
			}
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("decode suggestion: %v", err)
			}
			if got.Product != tt.wantProduct || got.Match != tt.wantMatch || got.Confidence != tt.wantConf {
				t.Errorf("suggestion = %+v, want %s/%s/%v", got, tt.wantProduct, tt.wantMatch, tt.wantConf)
			}
		})
	}
}

func TestRecommend_ValidationFields(t *testing.T) {
	srv := newTestServer(t, seededStore(t), nil, DefaultMiddlewareConfig())

	_, env := do(t, srv, http.MethodPost, "/api/v1/recommend", `{"basket":[]}`)
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
	if len(env.Error.Fields) != 1 || env.Error.Fields[0].Tag != "min" {
		t.Errorf("fields = %+v, want one min failure", env.Error.Fields)
	}
}

func TestRecommend_ClosedStore(t *testing.T) {
	st := seededStore(t)
	srv := newTestServer(t, st, nil, DefaultMiddlewareConfig())
	_ = st.Close()

	rec, env := do(t, srv, http.MethodPost, "/api/v1/recommend", `{"basket":["A"]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("POST /api/v1/recommend = %d, want 503", rec.Code)
	}
	if env.Error == nil || env.Error.Code != CodeStoreUnavailable {
		t.Errorf("error = %+v, want %s", env.Error, CodeStoreUnavailable)
	}
}

func TestLatestRun(t *testing.T) {
	st := seededStore(t)

	rec, _ := do(t, newTestServer(t, st, nil, DefaultMiddlewareConfig()), http.MethodGet, "/api/v1/runs/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/v1/runs/latest without history = %d, want 404", rec.Code)
	}

	history := pipeline.NewHistory()
	srv := newTestServer(t, st, history, DefaultMiddlewareConfig())

	rec, env := do(t, srv, http.MethodGet, "/api/v1/runs/latest", "")
	if rec.Code != http.StatusNotFound || env.Error.Code != CodeNoRunYet {
		t.Errorf("GET /api/v1/runs/latest before a run = %d, want 404 %s", rec.Code, CodeNoRunYet)
	}

	history.Record(time.Now(), []*pipeline.Report{{Outcome: pipeline.OutcomeMerged}}, errors.New("partial"))
	rec, env = do(t, srv, http.MethodGet, "/api/v1/runs/latest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/runs/latest = %d, want 200", rec.Code)
	}
	var run pipeline.Run
	if err := json.Unmarshal(env.Data, &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.Summary[pipeline.OutcomeMerged] != 1 || run.Error != "partial" {
		t.Errorf("run = %+v, want 1 merged with error partial", run)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 2
	srv := newTestServer(t, seededStore(t), nil, cfg)

	for i := 0; i < 2; i++ {
		if rec, _ := do(t, srv, http.MethodGet, "/api/v1/rules/all", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i, rec.Code)
		}
	}
	rec, env := do(t, srv, http.MethodGet, "/api/v1/rules/all", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "RATE_LIMITED" {
		t.Errorf("error = %+v, want RATE_LIMITED", env.Error)
	}

	// Health is outside the limited group
	if rec, _ := do(t, srv, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitDisabled = true
	srv := newTestServer(t, seededStore(t), nil, cfg)

	for i := 0; i < 5; i++ {
		if rec, _ := do(t, srv, http.MethodGet, "/api/v1/rules/all", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i, rec.Code)
		}
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t, seededStore(t), nil, DefaultMiddlewareConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "upstream-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "upstream-123" {
		t.Errorf("X-Request-Id = %q, want upstream-123", got)
	}
}

func TestCORS(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://shop.example"}
	srv := newTestServer(t, seededStore(t), nil, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules/all", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Errorf("Access-Control-Allow-Origin = %q, want https://shop.example", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/rules/all", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, seededStore(t), nil, DefaultMiddlewareConfig())

	do(t, srv, http.MethodGet, "/api/v1/rules?basket=A", "")

	rec, _ := do(t, srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "nextbasket_api_requests_total") {
		t.Error("/metrics is missing nextbasket_api_requests_total")
	}
	if !strings.Contains(body, `endpoint="/api/v1/rules"`) {
		t.Error("/metrics does not label requests by route pattern")
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	srv := newTestServer(t, seededStore(t), nil, DefaultMiddlewareConfig())

	if rec, env := do(t, srv, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound || env.Status != "error" {
		t.Errorf("GET /nope = %d %s, want 404 error", rec.Code, env.Status)
	}
	if rec, _ := do(t, srv, http.MethodDelete, "/api/v1/recommend", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /api/v1/recommend = %d, want 405", rec.Code)
	}
}

func TestParseBasketParam(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"A,B", "{A, B}"},
		{" B , A ", "{A, B}"},
		{"A,,A", "{A}"},
		{"", "{}"},
	}
	for _, tt := range tests {
		if got := parseBasketParam(tt.raw).String(); got != tt.want {
			t.Errorf("parseBasketParam(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestGenerateETag(t *testing.T) {
	a := generateETag([]byte("one"))
	if a != generateETag([]byte("one")) {
		t.Error("generateETag() is not deterministic")
	}
	if a == generateETag([]byte("two")) {
		t.Error("generateETag() collides on different input")
	}
}
