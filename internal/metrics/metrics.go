// Package metrics exposes pipeline counters via Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted   prometheus.Counter
	SessionsExpired   prometheus.Counter
	ImagesReceived    prometheus.Counter
	PipelinesStarted  prometheus.Counter
	PipelinesComplete prometheus.Counter
	PipelinesFailed   prometheus.Counter
	OCRCalls          *prometheus.CounterVec
	FieldsRecovered   prometheus.Histogram
	ComposeDuration   prometheus.Histogram
	CosmeticFailures  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "faydagen_sessions_started_total",
			Help: "Sessions created on first user interaction.",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "faydagen_sessions_expired_total",
			Help: "Sessions removed by the stale sweeper.",
		}),
		ImagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "faydagen_images_received_total",
			Help: "Images accepted into sessions.",
		}),
		PipelinesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "faydagen_pipelines_started_total",
			Help: "Pipeline runs triggered by a full session.",
		}),
		PipelinesComplete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "faydagen_pipelines_complete_total",
			Help: "Pipeline runs that produced an output card.",
		}),
		PipelinesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "faydagen_pipelines_failed_total",
			Help: "Pipeline runs that failed.",
		}),
		OCRCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "faydagen_ocr_calls_total",
			Help: "OCR service calls by outcome.",
		}, []string{"outcome"}),
		FieldsRecovered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "faydagen_fields_recovered",
			Help:    "Non-empty fields recovered per extraction.",
			Buckets: prometheus.LinearBuckets(0, 1, 12),
		}),
		ComposeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "faydagen_compose_duration_seconds",
			Help:    "Card composition wall time.",
			Buckets: prometheus.DefBuckets,
		}),
		CosmeticFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "faydagen_cosmetic_failures_total",
			Help: "Photo/QR placements skipped due to crop failures.",
		}),
	}

	reg.MustRegister(
		m.SessionsStarted, m.SessionsExpired, m.ImagesReceived,
		m.PipelinesStarted, m.PipelinesComplete, m.PipelinesFailed,
		m.OCRCalls, m.FieldsRecovered, m.ComposeDuration, m.CosmeticFailures,
	)

	return m
}

// Handler returns an HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}
