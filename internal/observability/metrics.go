// Package observability registers and records the service's Prometheus
// metrics. Recording helpers are nil-safe so code paths can call them
// before Init in tests.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "lojatax_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	filingBuilds  *prometheus.CounterVec
	filingLatency *prometheus.HistogramVec

	exportTotal *prometheus.CounterVec

	receiptsIssued  prometheus.Counter
	receiptFailures prometheus.Counter

	reportBuilds *prometheus.CounterVec
)

// Init registers all metrics with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		filingBuilds = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "filing_builds_total",
				Help: "Total VAT return computations by result",
			},
			[]string{"result"},
		)
		filingLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "filing_build_latency_seconds",
				Help:    "VAT return computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total filing document exports by format and result",
			},
			[]string{"format", "result"},
		)

		receiptsIssued = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "receipts_issued_total",
				Help: "Total receipt numbers issued",
			},
		)
		receiptFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "receipt_failures_total",
				Help: "Total receipt sequencer failures",
			},
		)

		reportBuilds = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_builds_total",
				Help: "Total monthly report computations by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			filingBuilds,
			filingLatency,
			exportTotal,
			receiptsIssued,
			receiptFailures,
			reportBuilds,
		)
	})
}

// ObserveFilingBuild records one VAT return computation.
func ObserveFilingBuild(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if filingBuilds != nil {
		filingBuilds.WithLabelValues(result).Inc()
	}
	if filingLatency != nil {
		filingLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncExport records one document export by format.
func IncExport(format, result string) {
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// IncReceiptIssued increments the issued-receipt counter.
func IncReceiptIssued() {
	if receiptsIssued != nil {
		receiptsIssued.Inc()
	}
}

// IncReceiptFailure increments the sequencer failure counter.
func IncReceiptFailure() {
	if receiptFailures != nil {
		receiptFailures.Inc()
	}
}

// IncReportBuild records one monthly report computation.
func IncReportBuild(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if reportBuilds != nil {
		reportBuilds.WithLabelValues(result).Inc()
	}
}
