package testutils

import (
	"sync"
	"time"

	"github.com/answerbench/answerbench/internal/ports"
)

var _ ports.MetricsCollector = (*RecordingMetrics)(nil)

// RecordingMetrics implements ports.MetricsCollector by remembering
// every call, so tests can assert on recorded metric names and label
// values without a Prometheus registry.
type RecordingMetrics struct {
	mu         sync.Mutex
	Counters   map[string]float64
	Labels     map[string]map[string]string
	Latencies  map[string]time.Duration
	Histograms map[string][]float64
}

// NewRecordingMetrics creates an empty recording collector.
func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Counters:   make(map[string]float64),
		Labels:     make(map[string]map[string]string),
		Latencies:  make(map[string]time.Duration),
		Histograms: make(map[string][]float64),
	}
}

// RecordLatency remembers the last latency per operation.
func (r *RecordingMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Latencies[operation] = duration
	r.Labels[operation] = labels
}

// RecordCounter accumulates counter values per metric.
func (r *RecordingMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counters[metric] += value
	r.Labels[metric] = labels
}

// RecordGauge stores the latest gauge value per metric.
func (r *RecordingMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counters[metric] = value
	r.Labels[metric] = labels
}

// RecordHistogram appends each observation per metric.
func (r *RecordingMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Histograms[metric] = append(r.Histograms[metric], value)
	r.Labels[metric] = labels
}

// CounterValue returns the accumulated value for metric.
func (r *RecordingMetrics) CounterValue(metric string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Counters[metric]
}

// LabelsFor returns the labels most recently recorded for metric.
func (r *RecordingMetrics) LabelsFor(metric string) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Labels[metric]
}
