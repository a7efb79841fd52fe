// Package prom records push tracking metrics with Prometheus.
package prom

import (
	"github.com/goliatone/go-push-tracking/pkg/interfaces/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements metrics.Recorder.
//
// Metrics:
//   - push_opened_total{action}
//   - push_tokens_registered_total
//   - push_tracking_failures_total{event}
//   - push_delegate_transitions_total{transition}
//   - push_interceptions_active
type Recorder struct {
	opened        *prometheus.CounterVec
	tokens        prometheus.Counter
	failures      *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	interceptions prometheus.Gauge
}

var _ metrics.Recorder = (*Recorder)(nil)

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		opened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_opened_total",
			Help: "Push notifications opened, by routed action kind",
		}, []string{"action"}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_tokens_registered_total",
			Help: "Device token registrations observed",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_tracking_failures_total",
			Help: "Tracking calls that returned an error",
		}, []string{"event"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_delegate_transitions_total",
			Help: "Notification delegate slot changes, by classified transition",
		}, []string{"transition"}),
		interceptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "push_interceptions_active",
			Help: "Callback interceptions currently installed",
		}),
	}
	for _, c := range []prometheus.Collector{r.opened, r.tokens, r.failures, r.transitions, r.interceptions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) PushOpened(action string) { r.opened.WithLabelValues(action).Inc() }

func (r *Recorder) TokenRegistered() { r.tokens.Inc() }

func (r *Recorder) TrackingFailed(eventType string) { r.failures.WithLabelValues(eventType).Inc() }

func (r *Recorder) DelegateTransition(transition string) {
	r.transitions.WithLabelValues(transition).Inc()
}

func (r *Recorder) InterceptionsActive(count int) { r.interceptions.Set(float64(count)) }
