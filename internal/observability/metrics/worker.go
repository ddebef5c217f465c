package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks the analysis pipeline. It satisfies the
// usecase.PipelineMetrics interface.
type WorkerMetrics struct {
	service  string
	registry *prometheus.Registry

	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	analysisInFlight prometheus.Gauge
	stageDuration    *prometheus.HistogramVec
	queueLag         *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "estim",
			Subsystem: "worker",
			Name:      "analysis_total",
			Help:      "Total processed analyses by final status.",
		},
		[]string{"service", "status"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estim",
			Subsystem: "worker",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "status"},
	)
	analysisInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "estim",
			Subsystem: "worker",
			Name:      "analysis_in_flight",
			Help:      "Number of analyses currently in the pipeline.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estim",
			Subsystem: "worker",
			Name:      "stage_duration_seconds",
			Help:      "Model stage duration in seconds by stage.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"service", "stage"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estim",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between analysis submission and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(analysisTotal, analysisDuration, analysisInFlight, stageDuration, queueLag)

	return &WorkerMetrics{
		service:          service,
		registry:         registry,
		analysisTotal:    analysisTotal,
		analysisDuration: analysisDuration,
		analysisInFlight: analysisInFlight,
		stageDuration:    stageDuration,
		queueLag:         queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveStage(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(m.service, stage).Observe(seconds)
}

func (m *WorkerMetrics) AnalysisFinished(status string) {
	m.analysisTotal.WithLabelValues(m.service, status).Inc()
}

func (m *WorkerMetrics) StartAnalysis() {
	m.analysisInFlight.Inc()
}

func (m *WorkerMetrics) FinishAnalysis(duration time.Duration, err error) {
	m.analysisInFlight.Dec()

	status := "completed"
	if err != nil {
		status = "failed"
	}
	m.analysisDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
