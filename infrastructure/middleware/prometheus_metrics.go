// Package middleware provides cross-cutting infrastructure shared by
// the query pipeline, currently the Prometheus metrics collector.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/answerbench/answerbench/internal/ports"
)

// namespace prefixes every exported metric.
const namespace = "answerbench"

// Compile-time verification that PrometheusMetrics implements
// MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements ports.MetricsCollector on the global
// Prometheus registry. It routes the well-known metric names used by
// the orchestrator, the scorer, and the judge client onto typed
// collectors, and falls back to generic operation metrics for anything
// else.
//
// Registration happens in the default registry, so construct it once
// per process.
type PrometheusMetrics struct {
	queriesTotal    prometheus.Counter
	sourceRequests  *prometheus.CounterVec
	sourceLatency   *prometheus.HistogramVec
	judgeRequests   *prometheus.CounterVec
	judgeLatency    *prometheus.HistogramVec
	judgeTokens     *prometheus.CounterVec
	scoringFallback *prometheus.CounterVec
	relevancyScore  *prometheus.HistogramVec
	scoreLatency    prometheus.Histogram

	operationCounter *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates the collector and registers all metrics
// in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		queriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of comparison queries processed.",
			},
		),
		sourceRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_requests_total",
				Help:      "Total number of upstream source requests by outcome.",
			},
			[]string{"source", "status"},
		),
		sourceLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "source_latency_seconds",
				Help:      "Time from dispatch until the source response body is fully read.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		judgeRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "judge_requests_total",
				Help:      "Total number of judge LLM requests by outcome.",
			},
			[]string{"provider", "model", "status"},
		),
		judgeLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "judge_latency_seconds",
				Help:      "Judge LLM request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "model"},
		),
		judgeTokens: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "judge_tokens_total",
				Help:      "Total judge LLM tokens consumed, split by direction.",
			},
			[]string{"provider", "model", "token_type"},
		),
		scoringFallback: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scoring_fallback_total",
				Help:      "Total number of scores produced by the lexical fallback, by reason.",
			},
			[]string{"reason"},
		),
		relevancyScore: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "relevancy_score",
				Help:      "Distribution of relevancy scores per source.",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{"source"},
		),
		scoreLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "score_latency_seconds",
				Help:      "Time taken to score one answer, judge call included.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of uncategorized operations by outcome.",
			},
			[]string{"operation", "status"},
		),
		operationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Execution time of uncategorized operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_state",
				Help:      "Current system state values.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records an operation duration, routing the source fetch
// and scoring operations onto their dedicated histograms.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	switch operation {
	case "source":
		pm.sourceLatency.WithLabelValues(labelOr(labels, "source")).Observe(duration.Seconds())
	case "score":
		pm.scoreLatency.Observe(duration.Seconds())
	default:
		pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordCounter increments the counter matching the metric name.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "queries_total":
		pm.queriesTotal.Add(value)
	case "source_requests_total":
		pm.sourceRequests.WithLabelValues(
			labelOr(labels, "source"),
			labelOr(labels, "status"),
		).Add(value)
	case "judge_requests_total":
		pm.judgeRequests.WithLabelValues(
			labelOr(labels, "provider"),
			labelOr(labels, "model"),
			labelOr(labels, "status"),
		).Add(value)
	case "judge_tokens_total":
		pm.judgeTokens.WithLabelValues(
			labelOr(labels, "provider"),
			labelOr(labels, "model"),
			labelOr(labels, "token_type"),
		).Add(value)
	case "scoring_fallback_total":
		pm.scoringFallback.WithLabelValues(labelOr(labels, "reason")).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, "success").Add(value)
	}
}

// RecordGauge sets a system state gauge.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram observes a value on the histogram matching the
// metric name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "source_latency_seconds":
		pm.sourceLatency.WithLabelValues(labelOr(labels, "source")).Observe(value)
	case "judge_latency_seconds":
		pm.judgeLatency.WithLabelValues(
			labelOr(labels, "provider"),
			labelOr(labels, "model"),
		).Observe(value)
	case "relevancy_score":
		pm.relevancyScore.WithLabelValues(labelOr(labels, "source")).Observe(value)
	default:
		pm.operationLatency.WithLabelValues(metric).Observe(value)
	}
}

// labelOr returns the label value or "unknown" when it is missing or
// empty, keeping cardinality predictable.
func labelOr(labels map[string]string, key string) string {
	if labels == nil {
		return "unknown"
	}
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}
