// Package metrics exposes prometheus instruments for the moderation engine.
// All methods are safe on a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "glock"

type Metrics struct {
	mutes        *prometheus.CounterVec
	misses       prometheus.Counter
	heals        *prometheus.CounterVec
	traps        *prometheus.CounterVec
	expired      prometheus.Counter
	tempDeleted  prometheus.Counter
	gatewayFails *prometheus.CounterVec
	chats        prometheus.Gauge
}

// New creates the instruments and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "duel",
			Name:      "mutes_total",
			Help:      "Members muted, by verb.",
		}, []string{"verb"}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "duel",
			Name:      "misses_total",
			Help:      "Shots at members who never joined the game.",
		}),
		heals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "duel",
			Name:      "heals_total",
			Help:      "Healing attempts, by result.",
		}, []string{"result"}),
		traps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "duel",
			Name:      "statuettes_total",
			Help:      "Statuette traps, by event (planted, redeemed).",
		}, []string{"event"}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "restrictions_expired_total",
			Help:      "Restrictions removed by the restriction sweep.",
		}),
		tempDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "temp_messages_deleted_total",
			Help:      "Temporary messages dropped by the cleanup sweep.",
		}),
		gatewayFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "failures_total",
			Help:      "Failed Bot API calls, by operation.",
		}, []string{"op"}),
		chats: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chats",
			Help:      "Chats with a live engine.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.mutes, m.misses, m.heals, m.traps, m.expired, m.tempDeleted, m.gatewayFails, m.chats)
	}
	return m
}

func (m *Metrics) Muted(verb string) {
	if m == nil {
		return
	}
	m.mutes.WithLabelValues(verb).Inc()
}

func (m *Metrics) Missed() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

func (m *Metrics) Healed(ok bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if ok {
		result = "healed"
	}
	m.heals.WithLabelValues(result).Inc()
}

func (m *Metrics) Statuette(event string) {
	if m == nil {
		return
	}
	m.traps.WithLabelValues(event).Inc()
}

func (m *Metrics) RestrictionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}

func (m *Metrics) TempMessagesDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tempDeleted.Add(float64(n))
}

func (m *Metrics) GatewayFailed(op string) {
	if m == nil {
		return
	}
	m.gatewayFails.WithLabelValues(op).Inc()
}

func (m *Metrics) SetChats(n int) {
	if m == nil {
		return
	}
	m.chats.Set(float64(n))
}
