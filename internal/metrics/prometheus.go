// Package metrics defines the Prometheus instrumentation for the batch
// converter: per-conversion counters and durations, batch job gauges, and
// HTTP API metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the converter.
type Metrics struct {
	// Conversion metrics
	ConversionsStarted   prometheus.Counter
	ConversionsCompleted prometheus.Counter
	ConversionsFailed    *prometheus.CounterVec
	ConversionDuration   prometheus.Histogram
	ActiveConversions    prometheus.Gauge
	OutputBytes          prometheus.Counter

	// Batch metrics
	FilesRejected  prometheus.Counter
	BatchTruncated prometheus.Counter
	JobsByStatus   *prometheus.GaugeVec

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ConversionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sdc_conversions_started_total",
			Help: "Total number of file conversions started",
		}),
		ConversionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sdc_conversions_completed_total",
			Help: "Total number of file conversions completed successfully",
		}),
		ConversionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sdc_conversions_failed_total",
			Help: "Total number of failed file conversions by failure kind",
		}, []string{"kind"}),
		ConversionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sdc_conversion_duration_seconds",
			Help:    "Duration of individual file conversions",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),
		ActiveConversions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sdc_active_conversions",
			Help: "Number of conversions currently running (0 or 1)",
		}),
		OutputBytes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sdc_output_bytes_total",
			Help: "Total bytes of converted audio written",
		}),

		FilesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sdc_files_rejected_total",
			Help: "Total number of files rejected by the pre-flight size check",
		}),
		BatchTruncated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sdc_batch_truncated_total",
			Help: "Total number of files dropped because the batch was full",
		}),
		JobsByStatus: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sdc_batch_jobs",
			Help: "Current number of batch jobs by status",
		}, []string{"status"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sdc_http_requests_total",
			Help: "Total number of HTTP API requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sdc_http_request_duration_seconds",
			Help:    "Duration of HTTP API requests",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sdc_http_errors_total",
			Help: "Total number of HTTP API error responses",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordHTTPRequest records one HTTP request with its duration.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordHTTPError records one HTTP error response.
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}

// SetJobCounts updates the per-status batch job gauges.
func (m *Metrics) SetJobCounts(pending, converting, completed, failed int) {
	m.JobsByStatus.WithLabelValues("pending").Set(float64(pending))
	m.JobsByStatus.WithLabelValues("converting").Set(float64(converting))
	m.JobsByStatus.WithLabelValues("completed").Set(float64(completed))
	m.JobsByStatus.WithLabelValues("failed").Set(float64(failed))
}
