package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hay-kot/toastq/internal/core/notify"
)

const metricsNamespace = "toastq"

// Metrics derives toast lifecycle counters from consecutive snapshots.
type Metrics struct {
	created       *prometheus.CounterVec
	dismissed     prometheus.Counter
	removed       prometheus.Counter
	active        prometheus.Gauge
	streamClients prometheus.Gauge

	mu   sync.Mutex
	prev map[string]bool // id -> visible
}

// NewMetrics registers the toast metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "toasts_created_total",
			Help:      "Total number of toasts created",
		}, []string{"severity"}),
		dismissed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "toasts_dismissed_total",
			Help:      "Total number of toasts hidden by dismissal or expiry",
		}),
		removed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "toasts_removed_total",
			Help:      "Total number of toasts removed from the queue",
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "toasts_visible",
			Help:      "Number of currently visible toasts",
		}),
		streamClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "stream_clients",
			Help:      "Number of connected stream clients",
		}),
		prev: make(map[string]bool),
	}
}

// Observe is a notify.Subscriber.
func (m *Metrics) Observe(snap []notify.Notification[string]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]bool, len(snap))
	visible := 0
	for _, n := range snap {
		next[n.ID] = n.Visible
		if n.Visible {
			visible++
		}

		was, seen := m.prev[n.ID]
		switch {
		case !seen:
			m.created.WithLabelValues(severityLabel(n.Severity)).Inc()
		case was && !n.Visible:
			m.dismissed.Inc()
		}
	}

	for id := range m.prev {
		if _, ok := next[id]; !ok {
			m.removed.Inc()
		}
	}

	m.active.Set(float64(visible))
	m.prev = next
}

// SetStreamClients records the number of connected stream clients.
func (m *Metrics) SetStreamClients(n int) {
	m.streamClients.Set(float64(n))
}

func severityLabel(s notify.Severity) string {
	if s == "" {
		return "unset"
	}
	return string(s)
}
