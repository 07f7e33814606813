package service

import "github.com/prometheus/client_golang/prometheus"

var (
	verificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "research",
			Name:      "verifications_total",
			Help:      "Verification attempts by document kind and result.",
		},
		[]string{"kind", "result"},
	)
	duplicateCandidatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "research",
			Name:      "duplicate_candidates_anomalies_total",
			Help:      "Draft verifications that found more than one verified copy.",
		},
	)
	ledgerOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "research",
			Name:      "ledger_operations_total",
			Help:      "Discard ledger operations by kind.",
		},
		[]string{"operation"},
	)
	sourcesMergedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "research",
			Name:      "sources_merged_total",
			Help:      "Duplicate sources folded into a canonical source.",
		},
	)
)

func init() {
	prometheus.MustRegister(verificationsTotal, duplicateCandidatesTotal, ledgerOperationsTotal, sourcesMergedTotal)
}

const (
	resultVerified = "verified"
	resultRejected = "rejected"
	resultError    = "error"
)

func observeVerification(kind string, outcome *Outcome, err error) {
	switch {
	case err != nil:
		verificationsTotal.WithLabelValues(kind, resultError).Inc()
	case outcome != nil && outcome.Rejected():
		verificationsTotal.WithLabelValues(kind, resultRejected).Inc()
	default:
		verificationsTotal.WithLabelValues(kind, resultVerified).Inc()
	}
}
