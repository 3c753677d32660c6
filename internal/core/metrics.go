package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesTotal counts assembled pages.
	// Labels: outcome (used, skipped)
	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foreclosures",
			Subsystem: "pipeline",
			Name:      "pages_total",
			Help:      "Pages seen by the document assembler, by outcome",
		},
		[]string{"outcome"},
	)

	// RunsTotal counts pipeline runs.
	// Labels: status (ok, empty, misaligned, failed)
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foreclosures",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of document runs by outcome",
		},
		[]string{"status"},
	)

	// RecordsTotal counts extracted records.
	// Labels: status (FULL, PARTIAL)
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foreclosures",
			Subsystem: "pipeline",
			Name:      "records_total",
			Help:      "Total number of extracted records by completeness",
		},
		[]string{"status"},
	)

	// AddressRuleTotal counts which cascade step produced each address.
	AddressRuleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foreclosures",
			Subsystem: "pipeline",
			Name:      "address_rule_total",
			Help:      "Addresses recovered per cascade rule",
		},
		[]string{"rule"},
	)

	// RunDuration tracks how long a document run takes.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "foreclosures",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Duration of document runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
