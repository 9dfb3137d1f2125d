package metrics

import (
	"time"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "omnisend"

// OutcomeOK is the outcome label of a successful dispatch.
const OutcomeOK = "ok"

// Metrics holds the dispatcher collectors. A nil *Metrics records nothing.
type Metrics struct {
	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	MQTTSessions     prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		DispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "dispatch_total",
				Help:      "Total number of dispatched requests",
			},
			[]string{"protocol", "outcome"},
		),
		DispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Dispatch duration in seconds",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
			},
			[]string{"protocol"},
		),
		MQTTSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "mqtt_sessions",
				Help:      "Number of open MQTT broker sessions",
			},
		),
	}

	// Pre-populate so every protocol is exported from the first scrape.
	for _, p := range protocol.All() {
		m.DispatchTotal.WithLabelValues(p.Label(), OutcomeOK)
		m.DispatchDuration.WithLabelValues(p.Label())
	}

	return m
}

// Outcome returns the outcome label for err.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return protocol.KindOf(err).String()
}

// ObserveDispatch records one dispatch.
func (m *Metrics) ObserveDispatch(p protocol.Protocol, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(p.Label(), Outcome(err)).Inc()
	m.DispatchDuration.WithLabelValues(p.Label()).Observe(d.Seconds())
}

// Sessions returns the MQTT session gauge, or nil for a nil *Metrics.
func (m *Metrics) Sessions() prometheus.Gauge {
	if m == nil {
		return nil
	}
	return m.MQTTSessions
}
