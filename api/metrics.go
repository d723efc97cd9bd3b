package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus collectors on a private registry so
// several servers can live in one process (tests do this).
type Metrics struct {
	registry *prometheus.Registry

	chatRequests *prometheus.CounterVec
	chatLatency  prometheus.Histogram
	httpRequests *prometheus.CounterVec
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		chatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatbot",
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome status.",
		}, []string{"status"}),
		chatLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chatbot",
			Name:      "chat_response_time_ms",
			Help:      "Completion plus persistence time of successful chat turns in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatbot",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
	}
}

// Registry exposes the collectors, e.g. for a custom exporter.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeChat(status string, responseTimeMs int64, success bool) {
	m.chatRequests.WithLabelValues(status).Inc()
	if success {
		m.chatLatency.Observe(float64(responseTimeMs))
	}
}

func (m *Metrics) observeHTTP(method, route string, code int) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}
