package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	ViewsRecorded       prometheus.Counter
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	ProfileSyncs        *prometheus.CounterVec
	LiveSubscriptions   prometheus.Gauge
}

// New registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ViewsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resham",
			Name:      "views_recorded_total",
			Help:      "Watch page loads that incremented a view counter.",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resham",
			Name:      "notifications_sent_total",
			Help:      "Notification documents written, by type.",
		}, []string{"type"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resham",
			Name:      "notifications_failed_total",
			Help:      "Notification writes that failed and were dropped, by type.",
		}, []string{"type"}),
		ProfileSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resham",
			Name:      "profile_syncs_total",
			Help:      "Profile updates by outcome (ok, profile_failed, videos_failed).",
		}, []string{"outcome"}),
		LiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "resham",
			Name:      "live_subscriptions",
			Help:      "Open live view subscriptions.",
		}),
	}
	m.registry.MustRegister(
		m.ViewsRecorded,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.ProfileSyncs,
		m.LiveSubscriptions,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
