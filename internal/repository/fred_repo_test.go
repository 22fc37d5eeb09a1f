package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"credit-intelligence/config"
	"credit-intelligence/pkg/httpclient"
	"credit-intelligence/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFREDRepository(t *testing.T, handler http.HandlerFunc) *fredRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{FRED: config.FRED{BaseURL: srv.URL, APIKey: "test-key", Timeout: 5 * time.Second, MaxRequestPerMinute: 100}}
	log := logger.NewNop()
	return newFREDRepository(cfg, log, httpclient.New(log, srv.URL, 5*time.Second, ""), 100)
}

func TestFREDRepository_LatestObservationSkipsMissing(t *testing.T) {
	repo := newTestFREDRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/observations", r.URL.Path)
		assert.Equal(t, "FEDFUNDS", r.URL.Query().Get("series_id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort_order"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[
			{"date":"2024-06-01","value":"."},
			{"date":"2024-05-01","value":"5.33"},
			{"date":"2024-04-01","value":"5.30"}
		]}`))
	})

	obs, err := repo.LatestObservation(context.Background(), "FEDFUNDS")
	require.NoError(t, err)
	assert.Equal(t, "FEDFUNDS", obs.SeriesID)
	assert.InDelta(t, 5.33, obs.Value, 1e-12)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), obs.Date)
}

func TestFREDRepository_NoUsableObservation(t *testing.T) {
	repo := newTestFREDRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[{"date":"2024-06-01","value":"."}]}`))
	})

	_, err := repo.LatestObservation(context.Background(), "BAA10YM")
	assert.ErrorIs(t, err, ErrNoObservation)
}

func TestFREDRepository_NonOKStatus(t *testing.T) {
	repo := newTestFREDRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":400,"error_message":"Bad Request. The value for variable api_key is not registered."}`))
	})

	_, err := repo.LatestObservation(context.Background(), "CPIAUCSL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
