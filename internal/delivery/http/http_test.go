package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"credit-intelligence/config"
	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/repository"
	"credit-intelligence/internal/scoring"
	"credit-intelligence/internal/service"
	"credit-intelligence/internal/testutil"
	"credit-intelligence/pkg/cache"
	"credit-intelligence/pkg/logger"
	"credit-intelligence/pkg/metrics"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	gbm := scoring.DefaultGBMParams()
	gbm.NumRounds = 40
	cfg := &config.Config{
		API:       config.API{MaxScoreHistory: 10},
		Scheduler: config.Scheduler{MaxConcurrency: 1, TimeoutDuration: time.Minute},
		Cache:     config.Cache{LatestScoreTTL: time.Minute},
		Scoring:   config.Scoring{AutoTrain: true, EventWindowDays: 14, RefreshConcurrency: 1, GBM: gbm},
	}
	log := logger.NewNop()
	repo := repository.NewRepository(cfg, testutil.NewDB(t), log)
	recorder := metrics.New(nil)
	services := service.NewService(cfg, log, repo, cache.NewCache(time.Minute, time.Minute), recorder, scoring.NewModelState())

	e := echo.New()
	e.Use(recorder.EchoMiddleware())
	NewHttpAPIHandler(context.Background(), e, goValidator.New(), services, recorder).SetupRoutes()
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) (int, dto.BaseResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp dto.BaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

// decodeData re-decodes the generic data field of a response into v.
func decodeData(t *testing.T, resp dto.BaseResponse, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func registerCompany(t *testing.T, e *echo.Echo, name string) uint {
	t.Helper()
	code, resp := doJSON(t, e, http.MethodPost, "/api/v1/companies", fmt.Sprintf(`{"name":%q}`, name))
	require.Equal(t, http.StatusCreated, code)
	var company struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &company)
	return company.ID
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)
	code, resp := doJSON(t, e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "credit-intelligence is running", resp.Message)
}

func TestScoringFlow(t *testing.T) {
	e := newTestServer(t)

	acme := registerCompany(t, e, "Acme Steel")
	nova := registerCompany(t, e, "Nova Retail")

	for _, body := range []string{
		fmt.Sprintf(`{"company_id":%d,"report_date":"2024-03-31","debt_ratio":0.7,"pe_ratio":12,"revenue":900,"profit_margin":0.01,"cash_ratio":0.4,"interest_coverage":1.2}`, acme),
		fmt.Sprintf(`{"company_id":%d,"report_date":"2024-03-31","debt_ratio":0.3,"pe_ratio":20,"revenue":4000,"profit_margin":0.2,"cash_ratio":2.0,"interest_coverage":12}`, nova),
	} {
		code, resp := doJSON(t, e, http.MethodPost, "/api/v1/financials", body)
		require.Equal(t, http.StatusCreated, code, resp.Message)
	}

	// no macro snapshot yet
	code, _ := doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/v1/scores/%d", acme), "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = doJSON(t, e, http.MethodPost, "/api/v1/macro", `{"report_date":"2024-04-01","gdp_growth":5.9,"interest_rate":6.5,"inflation":4.1,"credit_spread":2.3}`)
	require.Equal(t, http.StatusCreated, code)
	code, _ = doJSON(t, e, http.MethodPost, "/api/v1/events", fmt.Sprintf(`{"company_id":%d,"event_text":"Debt restructuring announced","sentiment":-0.6,"tags":["debt_restructuring"]}`, acme))
	require.Equal(t, http.StatusCreated, code)

	code, resp := doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/v1/scores/%d", acme), "")
	require.Equal(t, http.StatusOK, code, resp.Message)
	var scored dto.ScoreResult
	decodeData(t, resp, &scored)
	assert.Equal(t, acme, scored.CompanyID)
	assert.InDelta(t, -18.0, scored.EventAdjustment, 1e-9)
	require.Len(t, scored.Explanation.EventReasons, 1)
	assert.Equal(t, "Debt restructuring announced", scored.Explanation.EventReasons[0].Event)

	code, resp = doJSON(t, e, http.MethodGet, fmt.Sprintf("/api/v1/scores/%d/latest", acme), "")
	require.Equal(t, http.StatusOK, code)
	var latest dto.ScoreResult
	decodeData(t, resp, &latest)
	assert.Equal(t, scored.ID, latest.ID)

	code, resp = doJSON(t, e, http.MethodGet, fmt.Sprintf("/api/v1/scores/%d?from=2000-01-01", acme), "")
	require.Equal(t, http.StatusOK, code)
	var history []dto.ScoreResult
	decodeData(t, resp, &history)
	assert.Len(t, history, 1)

	code, resp = doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/v1/whatif/%d", acme), `{"overrides":{"debt_ratio":0.2}}`)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var whatIf dto.WhatIfResult
	decodeData(t, resp, &whatIf)
	assert.Equal(t, 0.2, whatIf.Overrides[scoring.FeatureDebtRatio])
	assert.Equal(t, 0.2, whatIf.Features[scoring.FeatureDebtRatio])

	code, resp = doJSON(t, e, http.MethodGet, "/api/v1/model/status", "")
	require.Equal(t, http.StatusOK, code)
	var status scoring.Status
	decodeData(t, resp, &status)
	assert.Equal(t, scoring.StateTrained, status.State)
	require.NotNil(t, status.Report)
	assert.Equal(t, 2, status.Report.Rows)
}

func TestErrorMapping(t *testing.T) {
	e := newTestServer(t)
	acme := registerCompany(t, e, "Acme Steel")
	lonely := registerCompany(t, e, "Lonely Corp")
	code, _ := doJSON(t, e, http.MethodPost, "/api/v1/financials", fmt.Sprintf(`{"company_id":%d,"report_date":"2024-03-31","debt_ratio":0.5}`, acme))
	require.Equal(t, http.StatusCreated, code)
	code, _ = doJSON(t, e, http.MethodPost, "/api/v1/macro", `{"report_date":"2024-04-01","interest_rate":5}`)
	require.Equal(t, http.StatusCreated, code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing company name", http.MethodPost, "/api/v1/companies", `{}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/companies", `{"name":`, http.StatusBadRequest},
		{"financials for unknown company", http.MethodPost, "/api/v1/financials", `{"company_id":999,"report_date":"2024-03-31"}`, http.StatusNotFound},
		{"bad report date", http.MethodPost, "/api/v1/macro", `{"report_date":"Q1 2024"}`, http.StatusBadRequest},
		{"non numeric id", http.MethodPost, "/api/v1/scores/abc", "", http.StatusBadRequest},
		{"company without financials", http.MethodPost, fmt.Sprintf("/api/v1/scores/%d", lonely), "", http.StatusNotFound},
		{"never scored", http.MethodGet, fmt.Sprintf("/api/v1/scores/%d/latest", acme), "", http.StatusNotFound},
		{"invalid override", http.MethodPost, fmt.Sprintf("/api/v1/whatif/%d", acme), `{"overrides":{"debt_ratio":"high"}}`, http.StatusBadRequest},
		{"bad history bound", http.MethodGet, fmt.Sprintf("/api/v1/scores/%d?to=soon", acme), "", http.StatusBadRequest},
		{"unknown job", http.MethodPost, "/api/v1/jobs/42/run", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := doJSON(t, e, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.want, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestServer(t)
	doJSON(t, e, http.MethodGet, "/", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/",status="200"} 1`)
}

func TestJobsEndpoints(t *testing.T) {
	e := newTestServer(t)

	code, resp := doJSON(t, e, http.MethodGet, "/api/v1/jobs", "")
	assert.Equal(t, http.StatusOK, code)
	var jobs []interface{}
	decodeData(t, resp, &jobs)
	assert.Empty(t, jobs)

	code, _ = doJSON(t, e, http.MethodPost, "/api/v1/jobs/run", "")
	assert.Equal(t, http.StatusOK, code)
}
