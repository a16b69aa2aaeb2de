package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_drops_total",
			Help: "Drop events handled by the reorder engine",
		},
		[]string{"item_type", "outcome"},
	)
	batchCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_batch_commits_total",
			Help: "Atomic batch commits by operation and result",
		},
		[]string{"operation", "result"},
	)
	batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "board_batch_mutations",
			Help:    "Number of mutations per committed batch",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
	)
)

func init() {
	prometheus.MustRegister(dropsTotal, batchCommits, batchSize)
}
