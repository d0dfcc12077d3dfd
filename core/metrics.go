package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	computeRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stepviz",
		Subsystem: "compute",
		Name:      "requests_total",
		Help:      "Chart computations dispatched to the background worker.",
	})
	computeSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stepviz",
		Subsystem: "compute",
		Name:      "superseded_total",
		Help:      "Computation outcomes discarded because a newer request existed.",
	})
	computeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stepviz",
		Subsystem: "compute",
		Name:      "failures_total",
		Help:      "Failed computations by phase.",
	}, []string{"phase"})
	selectionsCleared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stepviz",
		Subsystem: "compute",
		Name:      "selections_cleared_total",
		Help:      "Requests with an empty selection, answered without computing.",
	})
	computeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stepviz",
		Subsystem: "compute",
		Name:      "duration_seconds",
		Help:      "Time spent computing one selection.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})
	computeInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stepviz",
		Subsystem: "compute",
		Name:      "in_flight",
		Help:      "Computations currently running.",
	})
)
