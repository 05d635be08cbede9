package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveConversations prometheus.Gauge
	ConversationEvents  *prometheus.CounterVec
	Turns               *prometheus.CounterVec
	HandlerOutcomes     *prometheus.CounterVec
	ClassifierFallbacks prometheus.Counter
	MemoryWrites        *prometheus.CounterVec
	UpstreamLatency     *prometheus.HistogramVec
	UpstreamErrors      *prometheus.CounterVec
	WSMessages          *prometheus.CounterVec
	TurnLatency         prometheus.Histogram

	stages *turnStageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveConversations: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_conversations",
			Help:      "Number of live chat conversations.",
		}),
		ConversationEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversation_events_total",
			Help:      "Conversation lifecycle events by type.",
		}, []string{"event"}),
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns by classified intent.",
		}, []string{"intent"}),
		HandlerOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_outcomes_total",
			Help:      "Task handler results by handler and outcome.",
		}, []string{"handler", "outcome"}),
		ClassifierFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_fallbacks_total",
			Help:      "Classifications that fell back to the general intent.",
		}),
		MemoryWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_writes_total",
			Help:      "Memory write-back attempts by result.",
		}, []string{"result"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_ms",
			Help:      "Latency of calls to the LLM, memory and booking backends in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000},
		}, []string{"upstream", "op"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Upstream errors by upstream and code.",
		}, []string{"upstream", "code"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		TurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "End-to-end chat turn latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
		stages: newTurnStageWindow(256),
	}
}

// ObserveUpstream records one call to an external dependency. A non-empty
// code counts as an error.
func (m *Metrics) ObserveUpstream(upstream, op string, d time.Duration, code string) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(upstream, op).Observe(float64(d.Milliseconds()))
	if code != "" {
		m.UpstreamErrors.WithLabelValues(upstream, code).Inc()
	}
}

// ObserveTurnStage feeds both the rolling latency window and, for the
// whole-turn stage, the Prometheus histogram.
func (m *Metrics) ObserveTurnStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	ms := float64(d.Microseconds()) / 1000
	m.stages.Observe(stage, ms)
	if stage == StageTurnTotal {
		m.TurnLatency.Observe(ms)
	}
}

func (m *Metrics) ObserveTurnIndicator(name string) {
	if m == nil {
		return
	}
	m.stages.ObserveIndicator(name)
}

func (m *Metrics) SnapshotTurnStages() TurnStageSnapshot {
	if m == nil {
		return TurnStageSnapshot{GeneratedAt: time.Now().UTC()}
	}
	return m.stages.Snapshot()
}

// ResetTurnStages clears the rolling window; Prometheus series are untouched.
func (m *Metrics) ResetTurnStages() {
	if m == nil {
		return
	}
	m.stages.Reset()
}

func (m *Metrics) ObserveMemoryWrite(result string) {
	if m == nil {
		return
	}
	m.MemoryWrites.WithLabelValues(result).Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
