package observability

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	apiInflight   prometheus.Gauge
	llmRequests   *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	embedFallback *prometheus.CounterVec
	quizParse     *prometheus.CounterVec
	quizSkew      prometheus.Counter
	ingestStage   *prometheus.HistogramVec
	topicsMade    *prometheus.CounterVec
	sweepResets   prometheus.Counter
	emailSends    *prometheus.CounterVec
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

// Current returns the process metrics, or nil when metrics are disabled. Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aura_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "aura_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_llm_requests_total",
			Help: "Text generation calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aura_llm_request_duration_seconds",
			Help:    "Text generation latency by provider.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
		embedFallback: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_embedding_fallback_total",
			Help: "Texts embedded with the deterministic hash fallback, by reason.",
		}, []string{"reason"}),
		quizParse: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_quiz_blocks_total",
			Help: "Generated question blocks by parse result.",
		}, []string{"result"}),
		quizSkew: f.NewCounter(prometheus.CounterOpts{
			Name: "aura_quiz_single_letter_batches_total",
			Help: "Generated batches whose correct answers all share one letter.",
		}),
		ingestStage: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aura_ingest_stage_duration_seconds",
			Help:    "Ingestion stage duration by pipeline/stage/status.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"pipeline", "stage", "status"}),
		topicsMade: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_topics_total",
			Help: "Clusters by outcome (created, deduped).",
		}, []string{"outcome"}),
		sweepResets: f.NewCounter(prometheus.CounterOpts{
			Name: "aura_review_sweep_resets_total",
			Help: "Topics reset to Weak by the overdue sweep.",
		}),
		emailSends: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_email_sends_total",
			Help: "Notification emails by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveLLMRequest(provider, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = "unknown"
	}
	m.llmRequests.WithLabelValues(provider, outcome).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(provider).Observe(dur.Seconds())
	}
}

func (m *Metrics) AddEmbeddingFallback(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.embedFallback.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) ObserveQuizParse(parsed, malformed int) {
	if m == nil {
		return
	}
	if parsed > 0 {
		m.quizParse.WithLabelValues("parsed").Add(float64(parsed))
	}
	if malformed > 0 {
		m.quizParse.WithLabelValues("malformed").Add(float64(malformed))
	}
}

func (m *Metrics) IncQuizSingleLetterBatch() {
	if m == nil {
		return
	}
	m.quizSkew.Inc()
}

func (m *Metrics) ObserveIngestStage(pipeline, stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.ingestStage.WithLabelValues(pipeline, stage, status).Observe(dur.Seconds())
}

func (m *Metrics) AddTopics(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.topicsMade.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) AddSweepResets(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweepResets.Add(float64(n))
}

func (m *Metrics) IncEmail(outcome string) {
	if m == nil {
		return
	}
	m.emailSends.WithLabelValues(outcome).Inc()
}
