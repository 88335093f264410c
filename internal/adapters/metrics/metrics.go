// Package metrics exposes bridge activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wabridge"

// Recorder implements app.ReadinessEmitter and app.SendEventEmitter.
// It owns a private registry so tests and embedders never collide with the
// global one.
type Recorder struct {
	registry *prometheus.Registry

	ready       prometheus.Gauge
	transitions *prometheus.CounterVec
	sends       *prometheus.CounterVec
	sentBytes   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_ready",
			Help:      "1 while the messaging session accepts sends.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readiness_transitions_total",
			Help:      "Readiness changes by reason.",
		}, []string{"reason"}),
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Send attempts that reached the session client.",
		}, []string{"kind", "result"}),
		sentBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sent_bytes_total",
			Help:      "Payload bytes delivered.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Time spent in the session client per successful send.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
	}

	r.registry.MustRegister(
		r.ready,
		r.transitions,
		r.sends,
		r.sentBytes,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// OnReadinessChange records a readiness transition.
func (r *Recorder) OnReadinessChange(previous, current bool, reason string) {
	if current {
		r.ready.Set(1)
	} else {
		r.ready.Set(0)
	}
	r.transitions.WithLabelValues(reason).Inc()
}

// OnSendSuccess records a delivered message or file.
func (r *Recorder) OnSendSuccess(kind string, bytes int64, duration time.Duration) {
	r.sends.WithLabelValues(kind, "ok").Inc()
	r.sentBytes.WithLabelValues(kind).Add(float64(bytes))
	r.duration.WithLabelValues(kind).Observe(duration.Seconds())
}

// OnSendError records a failed delivery.
func (r *Recorder) OnSendError(kind string, err error) {
	r.sends.WithLabelValues(kind, "error").Inc()
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
