package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// View derivation metrics
	ViewDerivations *prometheus.CounterVec
	EmptyViews      *prometheus.CounterVec

	// Static data metrics
	DataLoads        *prometheus.CounterVec
	DataLoadDuration prometheus.Histogram
}

// NewMetrics creates all application metrics and registers them on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ViewDerivations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_derivations_total",
			Help:      "Total number of derived views served",
		}, []string{"view", "filter"}),
		EmptyViews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_views_total",
			Help:      "Total number of derived views with no items, by empty-state kind",
		}, []string{"view", "kind"}),
		DataLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_loads_total",
			Help:      "Total number of static data loads",
		}, []string{"result"}),
		DataLoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "data_load_duration_seconds",
			Help:      "Time spent loading and validating static data",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
		}),
	}
}

// ObserveView records one derivation and, when kind is set, its empty state.
func (m *Metrics) ObserveView(view, filter, emptyKind string) {
	if m == nil {
		return
	}
	m.ViewDerivations.WithLabelValues(view, filter).Inc()
	if emptyKind != "" {
		m.EmptyViews.WithLabelValues(view, emptyKind).Inc()
	}
}

// ObserveLoad records a static data load.
func (m *Metrics) ObserveLoad(seconds float64, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.DataLoads.WithLabelValues(result).Inc()
	m.DataLoadDuration.Observe(seconds)
}
