// Package metrics exposes Prometheus collectors for a running lexis node.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/papapumpkin/lexis/internal/lexicon"
)

const namespace = "lexis"

// Metrics groups the node's collectors. A nil *Metrics records nothing.
type Metrics struct {
	generation prometheus.Gauge
	advances   prometheus.Counter
	events     *prometheus.CounterVec
	words      prometheus.Gauge
	compounds  prometheus.Gauge
	syncs      *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		generation: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation",
			Help:      "Current generation index of the lexicon.",
		}),
		advances: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advances_total",
			Help:      "Generations advanced by this process.",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Lexicon events emitted, by kind.",
		}, []string{"kind"}),
		words: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "living_words",
			Help:      "Number of living words.",
		}),
		compounds: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compounds",
			Help:      "Number of compounds.",
		}),
		syncs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peer_syncs_total",
			Help:      "Peer synchronization attempts, by outcome.",
		}, []string{"outcome"}),
	}
}

// Advanced records one generation and the events it produced.
func (m *Metrics) Advanced(events []lexicon.LoggedEvent) {
	if m == nil {
		return
	}
	m.advances.Inc()
	for _, ev := range events {
		m.events.WithLabelValues(string(ev.Event.Kind())).Inc()
	}
}

// Observe sets the population gauges from s.
func (m *Metrics) Observe(s *lexicon.State) {
	if m == nil {
		return
	}
	m.generation.Set(float64(s.Generation))
	m.words.Set(float64(len(s.Words)))
	m.compounds.Set(float64(len(s.Compounds)))
}

// Synced records a peer sync attempt.
func (m *Metrics) Synced(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.syncs.WithLabelValues(outcome).Inc()
}
