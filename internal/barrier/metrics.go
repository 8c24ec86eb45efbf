package barrier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeNodeDown    = "node_down"
	outcomeUnarmed     = "unarmed"
	outcomeNonMatching = "non_matching"
	outcomeInvalid     = "invalid"
	outcomeJobMismatch = "job_mismatch"
	outcomeDuplicate   = "duplicate"
	outcomeCounted     = "counted"
	outcomeSatisfied   = "satisfied"
)

const (
	resultOK        = "ok"
	resultTimeout   = "timeout"
	resultFault     = "fault"
	resultCancelled = "cancelled"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifybarrier_dispatch_total",
			Help: "Notifications handed to the barrier, by source node and outcome.",
		},
		[]string{"node", "outcome"},
	)
	waitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifybarrier_wait_total",
			Help: "Completed waits by result.",
		},
		[]string{"result"},
	)
	waitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifybarrier_wait_duration_seconds",
			Help:    "Time from Wait until the notification was confirmed, grace period excluded.",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"result"},
	)
)
