package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	votesTotal        *prometheus.CounterVec
	wsConnections     prometheus.Gauge
	broadcastFailures prometheus.Counter
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livepoll",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the poll API.",
		}, []string{"method", "path", "status"})

		votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livepoll",
			Name:      "votes_total",
			Help:      "Total vote mutations by action (created, updated, canceled).",
		}, []string{"action"})

		wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "livepoll",
			Name:      "ws_connections",
			Help:      "Currently subscribed WebSocket connections.",
		})

		broadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "livepoll",
			Name:      "broadcast_failures_total",
			Help:      "Subscriber sends that failed and evicted the connection.",
		})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func IncVote(action string) {
	if votesTotal == nil {
		return
	}
	votesTotal.WithLabelValues(action).Inc()
}

func AddWSConnection(delta float64) {
	if wsConnections == nil {
		return
	}
	wsConnections.Add(delta)
}

func IncBroadcastFailure() {
	if broadcastFailures == nil {
		return
	}
	broadcastFailures.Inc()
}
