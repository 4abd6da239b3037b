package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	txStatusPollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cota",
			Subsystem: "tx_status",
			Name:      "polls_total",
			Help:      "Total number of get_transaction polls while waiting for commit",
		},
	)

	txStatusFinalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cota",
			Subsystem: "tx_status",
			Name:      "final_total",
			Help:      "Final on-chain status of waited transactions",
		},
		[]string{"status"}, // committed, rejected
	)
)

type TxStatusMetrics struct{}

func NewTxStatusMetrics() *TxStatusMetrics {
	return &TxStatusMetrics{}
}

func (tm *TxStatusMetrics) RecordPoll() {
	txStatusPollsTotal.Inc()
}

func (tm *TxStatusMetrics) RecordFinal(status string) {
	txStatusFinalTotal.WithLabelValues(status).Inc()
}
