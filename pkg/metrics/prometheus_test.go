package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	rec := New(prometheus.NewRegistry())

	rec.RecordScore("score", nil)
	rec.RecordScore("score", nil)
	rec.RecordScore("whatif", errors.New("boom"))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.scoresTotal.WithLabelValues("score", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.scoresTotal.WithLabelValues("whatif", "error")))

	r2 := 0.8
	rec.RecordTraining(time.Second, &r2, nil)
	rec.RecordTraining(0, nil, errors.New("no data"))
	assert.Equal(t, 0.8, testutil.ToFloat64(rec.validationR2))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.trainingRuns.WithLabelValues("error")))

	rec.RecordLastScore(7, 61.5)
	assert.Equal(t, 61.5, testutil.ToFloat64(rec.lastScore.WithLabelValues("7")))
}

func TestRecorder_EchoMiddlewareAndHandler(t *testing.T) {
	rec := New(nil)
	e := echo.New()
	e.Use(rec.EchoMiddleware())
	e.GET("/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/metrics", echo.WrapHandler(rec.Handler()))

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/2", nil))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.httpRequests.WithLabelValues("/items/:id", "GET", "204")))

	out := httptest.NewRecorder()
	e.ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Body.String(), "http_requests_total")
}
