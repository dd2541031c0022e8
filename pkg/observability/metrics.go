package observability

import (
	"time"

	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/transform"
	"github.com/prometheus/client_golang/prometheus"
)

// Call names used as label values and log attributes.
const (
	CallSend        = "send"
	CallReceive     = "receive"
	CallSendReceive = "send_receive"
)

// Metrics holds the collectors shared by every instrumented layer.
type Metrics struct {
	calls    *prometheus.CounterVec
	ops      *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lay_calls_total",
				Help: "Total number of dispatch calls",
			},
			[]string{"layer", "call"},
		),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lay_ops_total",
				Help: "Total number of operations sent",
			},
			[]string{"layer"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lay_call_failures_total",
				Help: "Dispatch calls whose result was a non-nil error",
			},
			[]string{"layer", "call"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lay_call_duration_seconds",
				Help:    "Duration of dispatch calls",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"layer", "call"},
		),
	}
	reg.MustRegister(m.calls, m.ops, m.failures, m.duration)
	return m
}

func (m *Metrics) observe(layer, call string, n int) func(result any) {
	start := time.Now()
	m.calls.WithLabelValues(layer, call).Inc()
	if n > 0 {
		m.ops.WithLabelValues(layer).Add(float64(n))
	}
	return func(result any) {
		m.duration.WithLabelValues(layer, call).Observe(time.Since(start).Seconds())
		if Failed(result) {
			m.failures.WithLabelValues(layer, call).Inc()
		}
	}
}

// Instrument returns a middleware recording metrics under the label layer.
func Instrument[Q, S, Op any, B ports.Measured[S], Req, Resp any](m *Metrics, layer string) transform.Middleware[Q, S, Op, B, Req, Resp] {
	return transform.InspectWith(transform.Hooks[Q, S, Op, B, Req, Resp]{
		Send: func(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op) Req {
			done := m.observe(layer, CallSend, len(ops))
			r := inner.Send(ops)
			done(r)
			return r
		},
		Receive: func(inner ports.Layer[Q, S, Op, B, Req, Resp], buf B) Resp {
			done := m.observe(layer, CallReceive, 0)
			r := inner.Receive(buf)
			done(r)
			return r
		},
		SendReceive: func(inner ports.Layer[Q, S, Op, B, Req, Resp], ops []Op, buf B) Resp {
			done := m.observe(layer, CallSendReceive, len(ops))
			r := inner.SendReceive(ops, buf)
			done(r)
			return r
		},
	})
}

// Failed reports whether a call result is a non-nil error.
func Failed(result any) bool {
	err, ok := result.(error)
	return ok && err != nil
}
