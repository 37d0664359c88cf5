package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Call outcomes used as the "outcome" label
const (
	OutcomeOK       = "ok"
	OutcomeRemote   = "remote_error"
	OutcomeProtocol = "protocol_error"
	OutcomeOther    = "error"
)

// Recorder counts engine calls and their latency on its own registry
type Recorder struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder whose metric names start with namespace
func NewRecorder(namespace string) *Recorder {
	if namespace == "" {
		namespace = "zapscan"
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_calls_total",
				Help:      "Engine API calls by component, operation and outcome",
			},
			[]string{"component", "operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "engine_call_duration_seconds",
				Help:      "Engine API call latency",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"component", "operation"},
		),
	}
	r.registry.MustRegister(r.calls, r.duration)
	return r
}

// ObserveCall records one finished engine call
func (r *Recorder) ObserveCall(call model.APICall, duration time.Duration, err error) {
	r.calls.WithLabelValues(call.Component, call.Name, outcome(err)).Inc()
	r.duration.WithLabelValues(call.Component, call.Name).Observe(duration.Seconds())
}

// Registry returns the registry holding the recorder metrics
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder metrics in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, model.ErrProtocol):
		return OutcomeProtocol
	case errors.Is(err, model.ErrRemote):
		return OutcomeRemote
	default:
		return OutcomeOther
	}
}

// Compile-time interface check.
var _ port.CallObserver = (*Recorder)(nil)
