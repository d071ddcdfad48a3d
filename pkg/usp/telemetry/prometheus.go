// Package telemetry provides a usp.TelemetrySink implementation backed by
// Prometheus client instrumentation.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rojolang/usp-go/pkg/usp"
)

// PrometheusSink groups the instruments a Connection writes telemetry to
// over its lifetime: device startup, request-id assignment, turn
// completion, audio-end, and protocol violations by reason.
type PrometheusSink struct {
	ActiveConnections  prometheus.Gauge
	RequestIDsCreated  *prometheus.CounterVec
	TurnsCompleted     *prometheus.CounterVec
	ProtocolViolations *prometheus.CounterVec
	AudioTurnDuration  prometheus.Histogram
}

// NewPrometheusSink registers a fresh instrument set under namespace and
// returns a constructor compatible with the `newTelemetry` hook
// Connection.Connect expects.
func NewPrometheusSink(namespace string) func(cfg *usp.Client) (usp.TelemetrySink, error) {
	sink := &PrometheusSink{
		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of live USP connections.",
		}),
		RequestIDsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_ids_created_total",
			Help:      "Request-ids created, by connection.",
		}, []string{"connection_id"}),
		TurnsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_completed_total",
			Help:      "turn.end events observed, by connection.",
		}, []string{"connection_id"}),
		ProtocolViolations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_violations_total",
			Help:      "Tolerated protocol violations, by reason.",
		}, []string{"reason"}),
		AudioTurnDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audio_turn_duration_seconds",
			Help:      "Wall-clock duration of a streamed audio turn.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	return func(cfg *usp.Client) (usp.TelemetrySink, error) {
		sink.ActiveConnections.Inc()
		return sink, nil
	}
}

// WriteTelemetry implements usp.TelemetrySink, routing the small fixed set
// of events a Connection emits to the matching Prometheus instrument.
func (s *PrometheusSink) WriteTelemetry(connectionID string, event string, fields map[string]any) {
	switch event {
	case "request_id_created":
		s.RequestIDsCreated.WithLabelValues(connectionID).Inc()
	case "turn_end":
		s.TurnsCompleted.WithLabelValues(connectionID).Inc()
	case "device_startup":
		// Gauge already incremented at sink construction time.
	case "audio_end":
		if d, ok := fields["duration_seconds"].(float64); ok {
			s.AudioTurnDuration.Observe(d)
		}
	case "protocol_violation":
		reason, _ := fields["reason"].(string)
		if reason == "" {
			reason = "unknown"
		}
		s.ProtocolViolations.WithLabelValues(reason).Inc()
	}
}

// Handler exposes the registered instruments on a /metrics-style endpoint;
// the core itself never listens on a port, so callers mount this
// themselves.
func Handler() http.Handler {
	return promhttp.Handler()
}
