// Package metrics exposes the Prometheus instrumentation for the pricing
// back office.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(New),
)

type Metrics struct {
	Registry *prometheus.Registry

	RunsCalculated  *prometheus.CounterVec
	ItemsPriced     prometheus.Counter
	ImportsCreated  prometheus.Counter
	FxRateFallbacks prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		RunsCalculated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "pricing",
			Name:      "runs_calculated_total",
			Help:      "Completed pricing run calculations by destination market.",
		}, []string{"market"}),
		ItemsPriced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "pricing",
			Name:      "items_priced_total",
			Help:      "Line items priced across all runs.",
		}),
		ImportsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "imports",
			Name:      "created_total",
			Help:      "Purchase-price imports accepted.",
		}),
		FxRateFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "fxrate",
			Name:      "fallbacks_total",
			Help:      "FX lookups that substituted the configured fallback rate.",
		}),
	}
	reg.MustRegister(m.RunsCalculated, m.ItemsPriced, m.ImportsCreated, m.FxRateFallbacks)
	return m
}
