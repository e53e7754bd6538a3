package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	// Command processor
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskbot",
		Subsystem: "commands",
		Name:      "processed_total",
		Help:      "Commands processed, labelled by canonical command and outcome.",
	}, []string{"command", "outcome"})

	CommandDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskbot",
		Subsystem: "commands",
		Name:      "duration_seconds",
		Help:      "Time spent handling a command, store round-trips included.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"command"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskbot",
		Subsystem: "commands",
		Name:      "rate_limited_total",
		Help:      "Commands rejected by the per-user rate limiter.",
	})

	// Maintenance
	PurgedTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskbot",
		Subsystem: "maintenance",
		Name:      "purged_tasks_total",
		Help:      "Tasks removed by retention purges.",
	}, []string{"workspace"})

	JournalEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskbot",
		Subsystem: "journal",
		Name:      "entries",
		Help:      "Exchanges currently held in the journal.",
	})
)
