package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jmaetrn_page_fetches_total",
			Help: "Total page fetches from the JMA historical data site",
		},
		[]string{"page", "status"},
	)

	PageFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jmaetrn_page_fetch_latency_seconds",
			Help:    "Page fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"page"},
	)

	RowsDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jmaetrn_rows_decoded_total",
			Help: "Total observation rows decoded",
		},
		[]string{"frequency", "station_class"},
	)

	DomainErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jmaetrn_domain_errors_total",
			Help: "Requests that ended in a domain error, by kind",
		},
		[]string{"kind"},
	)

	BackfillJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jmaetrn_backfill_jobs_total",
			Help: "Backfill jobs by outcome",
		},
		[]string{"outcome"},
	)
)
