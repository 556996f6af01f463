// Package ports defines the interfaces that form the contract between
// the application layer and the infrastructure layer.
// These interfaces enable dependency inversion and make the system
// testable.
package ports

import (
	"context"
	"time"
)

// LLMClient defines the interface for talking to the judge's language
// model provider. Implementations handle provider-specific details like
// authentication, request envelopes, and response unwrapping.
type LLMClient interface {
	// Complete sends a single free-form prompt and returns the first
	// generated text segment of the reply.
	//
	// The options map carries provider-tunable knobs without changing
	// the interface. Common options:
	//   - "temperature": float64
	//   - "max_tokens": int
	//   - "model": string (overrides the configured model)
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens calculates the approximate token count for a given
	// text. Used for cost logging; the method may vary by provider.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier being used by this client.
	GetModel() string
}

// RelevancyScorer scores how relevant an answer is to a query.
// Implementations must always return an integer in [0,100] and must
// absorb every judge failure internally; Score never reports an error.
type RelevancyScorer interface {
	// Score evaluates (query, answer) and returns a score in [0,100].
	// The answer may be a plain string, a domain.AnswerModel, or any
	// JSON-serializable value; non-strings are serialized before
	// submission to the judge.
	Score(ctx context.Context, query string, answer any) int
}

// MetricsCollector defines the interface for collecting operational
// metrics. The production implementation is Prometheus-backed; tests use
// a no-op collector.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, for distributions
	// like relevancy scores and response latencies.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
