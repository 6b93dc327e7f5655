// Package metrics exports engine activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/engine"
)

// Metrics is an engine.Observer backed by its own registry, so several
// displays in one process (or one test binary) never collide.
type Metrics struct {
	registry *prometheus.Registry

	admitted    prometheus.Counter
	dropped     prometheus.Counter
	completed   prometheus.Counter
	transitions *prometheus.CounterVec
	pending     prometheus.Gauge
	stage       prometheus.Gauge
}

// New registers the deko collectors. vendor is attached as a constant label.
func New(vendor string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	labels := prometheus.Labels{"vendor": vendor}

	return &Metrics{
		registry: reg,
		admitted: f.NewCounter(prometheus.CounterOpts{
			Name:        "deko_orders_admitted_total",
			Help:        "Orders accepted into the display queue",
			ConstLabels: labels,
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Name:        "deko_orders_dropped_total",
			Help:        "Orders rejected because the queue was full",
			ConstLabels: labels,
		}),
		completed: f.NewCounter(prometheus.CounterOpts{
			Name:        "deko_orders_completed_total",
			Help:        "Orders that played through READY",
			ConstLabels: labels,
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "deko_stage_transitions_total",
			Help:        "Stage transitions by destination stage",
			ConstLabels: labels,
		}, []string{"stage"}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Name:        "deko_queue_pending",
			Help:        "Orders waiting behind the one in flight",
			ConstLabels: labels,
		}),
		stage: f.NewGauge(prometheus.GaugeOpts{
			Name:        "deko_stage",
			Help:        "Current stage (0=IDLE 1=RECEIVED 2=PREPARING 3=PACKAGING 4=READY)",
			ConstLabels: labels,
		}),
	}
}

func (m *Metrics) OnAdmit(a engine.Admit) {
	m.admitted.Inc()
	m.pending.Set(float64(a.Pending))
}

func (m *Metrics) OnDrop(d engine.Drop) {
	m.dropped.Inc()
	m.pending.Set(float64(d.Pending))
}

func (m *Metrics) OnTransition(t engine.Transition) {
	m.transitions.WithLabelValues(t.To.String()).Inc()
	m.stage.Set(float64(t.To))
	m.pending.Set(float64(t.Pending))
	if t.From == domain.StageReady && t.To == domain.StageIdle {
		m.completed.Inc()
	}
}

// Registry exposes the registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
