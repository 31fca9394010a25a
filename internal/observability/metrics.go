package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

// Metrics exposes counters for the scoring and planning pipeline in
// Prometheus text format. Init returns nil when METRICS_ENABLED is off;
// every method tolerates a nil receiver.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	assessmentsScored *Counter
	criticalOverrides *Counter
	stageSources      *CounterVec
	riskScores        *HistogramVec

	plansGenerated *Counter
	planFallbacks  *Counter
	adaptations    *CounterVec

	batchRuns        *Counter
	batchSubmissions *Counter
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = &Metrics{
			apiRequests: NewCounterVec("arogya_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
			apiLatency: NewHistogramVec(
				"arogya_api_request_duration_seconds",
				"API request latency in seconds by method/route/status.",
				[]string{"method", "route", "status"},
				[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			),
			apiInflight:       NewGauge("arogya_api_inflight_requests", "In-flight API requests."),
			assessmentsScored: NewCounter("arogya_assessments_scored_total", "Questionnaire submissions scored."),
			criticalOverrides: NewCounter("arogya_critical_overrides_total", "Submissions that triggered a critical override."),
			stageSources:      NewCounterVec("arogya_stage_source_total", "Stage assignments by source.", []string{"source"}),
			riskScores: NewHistogramVec(
				"arogya_risk_score",
				"Distribution of computed risk scores.",
				[]string{},
				[]float64{-20, -10, -5, 0, 5, 10, 20, 40, 80, 200, 1000},
			),
			plansGenerated: NewCounter("arogya_plans_generated_total", "Intervention plans generated."),
			planFallbacks:  NewCounter("arogya_plan_fallbacks_total", "Plans built from the static fallback phases."),
			adaptations:    NewCounterVec("arogya_plan_adaptations_total", "Plan adaptations by target language.", []string{"language"}),
			batchRuns:      NewCounter("arogya_batch_runs_total", "Batch processing runs."),
			batchSubmissions: NewCounter("arogya_batch_submissions_total", "Submissions processed in batch runs."),
		}
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAssessment(score float64, stageSource string, critical bool) {
	if m == nil {
		return
	}
	m.assessmentsScored.Inc()
	m.riskScores.Observe(score)
	if stageSource == "" {
		stageSource = "unknown"
	}
	m.stageSources.Inc(stageSource)
	if critical {
		m.criticalOverrides.Inc()
	}
}

func (m *Metrics) IncPlanGenerated(fallback bool) {
	if m == nil {
		return
	}
	m.plansGenerated.Inc()
	if fallback {
		m.planFallbacks.Inc()
	}
}

func (m *Metrics) IncAdaptation(language string) {
	if m == nil {
		return
	}
	if language == "" {
		language = "unknown"
	}
	m.adaptations.Inc(language)
}

func (m *Metrics) ObserveBatch(submissions int) {
	if m == nil {
		return
	}
	m.batchRuns.Inc()
	m.batchSubmissions.Add(float64(submissions))
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.assessmentsScored,
		m.criticalOverrides,
		m.stageSources,
		m.riskScores,
		m.plansGenerated,
		m.planFallbacks,
		m.adaptations,
		m.batchRuns,
		m.batchSubmissions,
	}
	for _, metric := range writers {
		if err := metric.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
