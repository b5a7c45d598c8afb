package application

import (
	"errors"

	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "assetforge"

const (
	OutcomeApplied  = "applied"
	OutcomeStale    = "stale"
	OutcomeError    = "error"
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
	OutcomeDeclined = "declined"
)

// SyncMetrics counts sync and mutation outcomes. A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	fetches    *prometheus.CounterVec
	stale      prometheus.Counter
	superseded prometheus.Counter
	mutations  *prometheus.CounterVec
}

func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "fetches_total",
			Help:      "Catalog view fetches by view kind and outcome.",
		}, []string{"kind", "outcome"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "stale_discarded_total",
			Help:      "Asset listings discarded because a newer generation was already applied.",
		}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "debounce_superseded_total",
			Help:      "Pending filter fetches cancelled by a newer filter change.",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutations_total",
			Help:      "Catalog mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
	}

	if reg == nil {
		return m, nil
	}

	var errs []error
	for _, collector := range []prometheus.Collector{m.fetches, m.stale, m.superseded, m.mutations} {
		if err := reg.Register(collector); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *SyncMetrics) observeFetch(kind domain.ViewKind, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(string(kind), outcome).Inc()
	if outcome == OutcomeStale {
		m.stale.Inc()
	}
}

func (m *SyncMetrics) debounceSuperseded() {
	if m == nil {
		return
	}
	m.superseded.Inc()
}

func (m *SyncMetrics) observeMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}
