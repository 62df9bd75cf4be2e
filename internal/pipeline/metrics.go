package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betslip_scans_total",
		Help: "Number of betslip scans processed.",
	})
	scanFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betslip_scan_failures_total",
		Help: "Number of scans rejected before producing selections.",
	})
	oddsFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betslip_odds_fetches_total",
		Help: "Per-selection odds fetch outcomes.",
	}, []string{"result"})
	recordPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betslip_record_publish_failures_total",
		Help: "Number of scan records that could not be handed off.",
	})
)
