package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Messages         *prometheus.CounterVec
	GenerationErrors *prometheus.CounterVec
	StorageErrors    *prometheus.CounterVec
	SpeechAttempts   *prometheus.CounterVec
	ActiveVoice      prometheus.Gauge
	VoiceEvents      *prometheus.CounterVec
	MemoryUsers      prometheus.Gauge
	StageLatency     *prometheus.HistogramVec

	window   *StageWindow
	gatherer prometheus.Gatherer
}

// NewMetrics registers instruments on the default Prometheus registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewMetricsWithRegistry registers instruments on reg and serves them from g.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Classified inbound messages by intent.",
		}, []string{"intent"}),
		GenerationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Text generation failures replaced by a placeholder, by kind.",
		}, []string{"kind"}),
		StorageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Swallowed memory storage failures by operation.",
		}, []string{"op"}),
		SpeechAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_attempts_total",
			Help:      "Speech attempts by outcome.",
		}, []string{"outcome"}),
		ActiveVoice: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_voice_sessions",
			Help:      "Number of connected guild voice sessions.",
		}),
		VoiceEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_session_events_total",
			Help:      "Voice session events by type.",
		}, []string{"event"}),
		MemoryUsers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_users",
			Help:      "Users with recorded conversational history.",
		}),
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_ms",
			Help:      "Latency of dispatch stages in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000},
		}, []string{"stage"}),
		window:   NewStageWindow(256),
		gatherer: g,
	}
}

func (m *Metrics) IncMessage(intent string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(intent).Inc()
}

func (m *Metrics) IncGenerationError(kind string) {
	if m == nil {
		return
	}
	m.GenerationErrors.WithLabelValues(kind).Inc()
	m.window.ObserveIndicator("placeholder_" + kind)
}

func (m *Metrics) IncStorageError(op string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) IncSpeech(outcome string) {
	if m == nil {
		return
	}
	m.SpeechAttempts.WithLabelValues(outcome).Inc()
	m.window.ObserveIndicator("speech_" + outcome)
}

func (m *Metrics) VoiceEvent(event string, active int) {
	if m == nil {
		return
	}
	m.VoiceEvents.WithLabelValues(event).Inc()
	m.ActiveVoice.Set(float64(active))
}

func (m *Metrics) SetMemoryUsers(n int) {
	if m == nil {
		return
	}
	m.MemoryUsers.Set(float64(n))
}

// ObserveStage records a stage duration in both the histogram and the
// rolling window served by the ops API.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	ms := float64(d.Milliseconds())
	m.StageLatency.WithLabelValues(stage).Observe(ms)
	m.window.Observe(stage, ms)
}

// StageSnapshot returns rolling latency percentiles per stage.
func (m *Metrics) StageSnapshot() StageSnapshot {
	if m == nil {
		return StageSnapshot{}
	}
	return m.window.Snapshot()
}

// Handler serves the registry the instruments were registered on.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
