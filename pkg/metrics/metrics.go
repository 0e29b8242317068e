// Package metrics exposes Prometheus collectors for the review service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Extraction metrics
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neoreview_extractions_total",
			Help: "Total number of IFS document extractions",
		},
		[]string{"outcome"},
	)

	// Session metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "neoreview_sessions_active",
			Help: "Number of live review sessions",
		},
	)

	SessionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neoreview_sessions_created_total",
			Help: "Total number of sessions, by source (document or worksave)",
		},
		[]string{"source"},
	)

	// Workbook metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neoreview_exports_total",
			Help: "Total number of workbook exports, by kind (worksave or report)",
		},
		[]string{"kind"},
	)

	ImportRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neoreview_import_rejections_total",
			Help: "Total number of resume uploads rejected as not being work saves",
		},
	)

	// Requirement-table metrics
	TableFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neoreview_table_fetch_total",
			Help: "Total number of requirement-table fetch attempts, by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"

	SourceDocument = "document"
	SourceWorkSave = "worksave"

	KindWorkSave = "worksave"
	KindReport   = "report"
)
