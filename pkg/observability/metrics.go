package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fbbridge",
			Subsystem: "channel",
			Name:      "messages_total",
			Help:      "Messages crossing the channel by side, kind and result.",
		},
		[]string{"side", "kind", "result"},
	)
	protocolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fbbridge",
			Subsystem: "channel",
			Name:      "protocol_errors_total",
			Help:      "Recovered protocol misuse: malformed frames, wrong direction, unhandled kinds.",
		},
		[]string{"side", "reason"},
	)
	handlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fbbridge",
			Subsystem: "dispatch",
			Name:      "handler_duration_seconds",
			Help:      "Request handler duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)
	lifecycleState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fbbridge",
			Subsystem: "emulators",
			Name:      "state",
			Help:      "1 for the current emulator lifecycle state, 0 otherwise.",
		},
		[]string{"state"},
	)
	lifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fbbridge",
			Subsystem: "emulators",
			Name:      "transitions_total",
			Help:      "Emulator lifecycle transitions.",
		},
		[]string{"from", "to"},
	)
	connectedPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fbbridge",
			Subsystem: "hub",
			Name:      "connected_peers",
			Help:      "UI peers currently attached to the host.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(messagesTotal, protocolErrors, handlerDuration,
			lifecycleState, lifecycleTransitions, connectedPeers)
	})
}

func RecordMessage(side, kind, result string) {
	RegisterMetrics()
	messagesTotal.WithLabelValues(side, kind, result).Inc()
}

func RecordProtocolError(side, reason string) {
	RegisterMetrics()
	protocolErrors.WithLabelValues(side, reason).Inc()
}

func RecordHandler(kind, outcome string, d time.Duration) {
	RegisterMetrics()
	handlerDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

// RecordTransition moves the state gauge from one state to the other.
func RecordTransition(from, to string) {
	RegisterMetrics()
	lifecycleTransitions.WithLabelValues(from, to).Inc()
	lifecycleState.WithLabelValues(from).Set(0)
	lifecycleState.WithLabelValues(to).Set(1)
}

func SetConnectedPeers(n int) {
	RegisterMetrics()
	connectedPeers.Set(float64(n))
}
