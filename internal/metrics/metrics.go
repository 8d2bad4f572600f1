// Package metrics exposes registry gauges and counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Teams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "teamsd",
		Subsystem: "registry",
		Name:      "teams",
		Help:      "Number of teams currently held, by type",
	}, []string{"type"})

	KnownPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamsd",
		Subsystem: "registry",
		Name:      "known_players",
		Help:      "Number of players with a player team",
	})

	DirtyEntities = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamsd",
		Subsystem: "registry",
		Name:      "dirty_entities",
		Help:      "Teams and registry documents not yet written",
	})

	LoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamsd",
		Subsystem: "persist",
		Name:      "load_failures_total",
		Help:      "The total number of documents skipped while loading",
	})

	FlushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamsd",
		Subsystem: "persist",
		Name:      "flush_failures_total",
		Help:      "The total number of failed document writes",
	})

	Flushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamsd",
		Subsystem: "persist",
		Name:      "flushes_total",
		Help:      "The total number of flushes",
	})

	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamsd",
		Subsystem: "command",
		Name:      "commands_total",
		Help:      "The total number of commands executed",
	}, []string{"result"})

	Events = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamsd",
		Subsystem: "event",
		Name:      "dispatched_total",
		Help:      "The total number of events delivered to handlers",
	})
)
