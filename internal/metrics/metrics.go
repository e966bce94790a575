// Package metrics exposes fetch counters on a private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listfeed"

// Fetch records controller outcomes. The zero value is not usable; call New.
type Fetch struct {
	registry   *prometheus.Registry
	total      *prometheus.CounterVec
	superseded *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	records    *prometheus.GaugeVec
}

// New registers the fetch collectors plus the Go and process collectors on a
// fresh registry.
func New() *Fetch {
	f := &Fetch{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Completed fetches by resource and outcome.",
			},
			[]string{"resource", "outcome"},
		),
		superseded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_superseded_total",
				Help:      "Fetches whose result was dropped because a newer load started.",
			},
			[]string{"resource"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Wall time of completed fetches.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"resource"},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "Records held after the last successful fetch.",
			},
			[]string{"resource"},
		),
	}
	f.registry.MustRegister(
		f.total,
		f.superseded,
		f.duration,
		f.records,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return f
}

// ObserveFetch counts one completed fetch. records only updates the gauge
// when outcome is "loaded".
func (f *Fetch) ObserveFetch(resource, outcome string, took time.Duration, records int) {
	if f == nil {
		return
	}
	f.total.WithLabelValues(resource, outcome).Inc()
	f.duration.WithLabelValues(resource).Observe(took.Seconds())
	if outcome == "loaded" {
		f.records.WithLabelValues(resource).Set(float64(records))
	}
}

// ObserveSuperseded counts a dropped completion.
func (f *Fetch) ObserveSuperseded(resource string) {
	if f == nil {
		return
	}
	f.superseded.WithLabelValues(resource).Inc()
}

// Registry returns the underlying registry.
func (f *Fetch) Registry() *prometheus.Registry {
	return f.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (f *Fetch) Handler() http.Handler {
	return promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{Registry: f.registry})
}
