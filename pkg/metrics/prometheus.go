package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes the scoring engine's Prometheus metrics.
type Recorder struct {
	registry *prometheus.Registry

	scoresTotal     *prometheus.CounterVec
	lastScore       *prometheus.GaugeVec
	trainingRuns    *prometheus.CounterVec
	trainingLatency prometheus.Histogram
	validationR2    prometheus.Gauge
	jobRuns         *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// New registers all collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scoresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_scores_total",
				Help: "Total number of scoring invocations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		lastScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credit_last_final_score",
				Help: "Most recent persisted final score per company",
			},
			[]string{"company_id"},
		),
		trainingRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_model_training_runs_total",
				Help: "Total number of model training runs by outcome",
			},
			[]string{"outcome"},
		),
		trainingLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_model_training_duration_seconds",
				Help:    "Duration of model training runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		validationR2: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "credit_model_validation_r2",
				Help: "Validation R2 of the installed model",
			},
		),
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_job_runs_total",
				Help: "Total number of scheduled job runs by type and status",
			},
			[]string{"type", "status"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
	}
}

// RecordScore counts a scoring call. kind is "score" or "whatif".
func (r *Recorder) RecordScore(kind string, err error) {
	r.scoresTotal.WithLabelValues(kind, outcome(err)).Inc()
}

func (r *Recorder) RecordLastScore(companyID uint, finalScore float64) {
	r.lastScore.WithLabelValues(strconv.FormatUint(uint64(companyID), 10)).Set(finalScore)
}

// RecordTraining records a training run. r2 is nil when no validation metric exists.
func (r *Recorder) RecordTraining(d time.Duration, r2 *float64, err error) {
	r.trainingRuns.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	r.trainingLatency.Observe(d.Seconds())
	if r2 != nil {
		r.validationR2.Set(*r2)
	}
}

func (r *Recorder) RecordJobRun(jobType, status string) {
	r.jobRuns.WithLabelValues(jobType, status).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// EchoMiddleware records request counts and latency labelled by route template.
func (r *Recorder) EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)
			r.httpRequests.WithLabelValues(route, method, status).Inc()
			r.httpLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
