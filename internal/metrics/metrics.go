// Package metrics holds the Prometheus collectors for the window manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tilewm"

var (
	// CommandsTotal counts executed commands.
	// Labels: command (wire name), result (ok, error, panic)
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "wm",
		Name:      "commands_total",
		Help:      "Total commands executed by the window manager",
	}, []string{"command", "result"})

	// CommandDuration measures time spent applying one command.
	// Labels: command
	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "wm",
		Name:      "command_duration_seconds",
		Help:      "Command execution latency in seconds",
		Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
	}, []string{"command"})

	// RedrawBatchSize tracks how many containers each cycle hands to the driver.
	RedrawBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "wm",
		Name:      "redraw_batch_size",
		Help:      "Containers drained from the pending sync ledger per cycle",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
	})

	// EventsPublished counts events fanned out by kind.
	// Labels: kind
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Total events published",
	}, []string{"kind"})

	// Subscribers is the number of live event subscriptions.
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "subscribers",
		Help:      "Live event subscriptions",
	})

	// Connections is the number of open IPC connections.
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ipc",
		Name:      "connections",
		Help:      "Open IPC client connections",
	})

	// MessagesTotal counts inbound IPC messages.
	// Labels: method (monitors, windows, command, subscribe, invalid)
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ipc",
		Name:      "messages_total",
		Help:      "Total inbound IPC messages by method",
	}, []string{"method"})

	// ConnectionErrors counts connections closed on error.
	// Labels: reason (protocol, slow_consumer, transport, rate_limited)
	ConnectionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ipc",
		Name:      "connection_errors_total",
		Help:      "Total IPC connections closed because of an error",
	}, []string{"reason"})
)
