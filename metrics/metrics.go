// Package metrics exposes Prometheus collectors for the document store.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store implements store.Observer.
type Store struct {
	transactions *prometheus.HistogramVec
	busy         *prometheus.CounterVec
	failures     *prometheus.CounterVec
}

// NewStore builds the collectors and registers them with reg.
func NewStore(reg prometheus.Registerer) *Store {
	m := &Store{
		transactions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jsoncrud",
			Subsystem: "store",
			Name:      "transaction_duration_seconds",
			Help:      "Time spent waiting for and running guarded document transactions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		busy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsoncrud",
			Subsystem: "store",
			Name:      "busy_total",
			Help:      "Transactions rejected because the document guard could not be acquired in time.",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsoncrud",
			Subsystem: "store",
			Name:      "transaction_errors_total",
			Help:      "Transactions that returned an error.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.transactions, m.busy, m.failures)
	return m
}

func (m *Store) ObserveTransaction(op string, elapsed time.Duration, err error) {
	m.transactions.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}

func (m *Store) ObserveBusy(op string) {
	m.busy.WithLabelValues(op).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
