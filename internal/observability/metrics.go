package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "psychrometer"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	Calculations *prometheus.CounterVec // labels: source={http,bot,pipeline}, outcome={ok,<failure kind>}

	// Transcription metrics.
	TranscriptionRequests    *prometheus.CounterVec // labels: outcome={success,unreadable,malformed,error}
	TranscriptionCache       *prometheus.CounterVec // labels: result={hit,miss}
	TranscriptionAPIDuration prometheus.Histogram
	TranscriptionEnabled     prometheus.Gauge

	// Bot metrics.
	BotUpdates *prometheus.CounterVec // labels: kind={command,callback,text,photo,other}

	// Pipeline metrics.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Calculations,
		m.TranscriptionRequests,
		m.TranscriptionCache,
		m.TranscriptionAPIDuration,
		m.TranscriptionEnabled,
		m.BotUpdates,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Humidity calculations by request source and outcome.",
		}, []string{"source", "outcome"}),
		TranscriptionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_requests_total",
			Help:      "Vision transcription requests by outcome.",
		}, []string{"outcome"}),
		TranscriptionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_cache_total",
			Help:      "Transcription cache lookups by result.",
		}, []string{"result"}),
		TranscriptionAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_api_duration_seconds",
			Help:      "Vision API request duration in seconds, retries included.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		TranscriptionEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transcription_enabled",
			Help:      "1 when photo transcription is configured, 0 otherwise.",
		}),
		BotUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_updates_total",
			Help:      "Telegram updates handled by kind.",
		}, []string{"kind"}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total readings read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total observations written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total unparseable readings skipped by the pipeline.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of readings per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-calculate-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
