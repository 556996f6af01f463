package llm

import (
	"context"
	"errors"
	"time"

	"github.com/answerbench/answerbench/internal/ports"
)

// metricsLLM records judge request counts, latency, and token usage.
type metricsLLM struct {
	next      CoreLLM
	collector ports.MetricsCollector
	provider  string
}

// MetricsMiddleware records per-request judge metrics labeled with the
// provider and model. A nil collector disables recording.
func MetricsMiddleware(collector ports.MetricsCollector, provider string) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &metricsLLM{
			next:      next,
			collector: collector,
			provider:  provider,
		}
	}
}

// DoRequest forwards the request and records its outcome.
func (m *metricsLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	start := time.Now()
	response, tokensIn, tokensOut, err := m.next.DoRequest(ctx, prompt, opts)

	labels := map[string]string{
		"provider": m.provider,
		"model":    m.next.GetModel(),
		"status":   requestStatus(ctx, err),
	}

	if m.collector != nil {
		m.collector.RecordHistogram("judge_latency_seconds", time.Since(start).Seconds(), labels)
		m.collector.RecordCounter("judge_requests_total", 1, labels)

		if err == nil {
			labels["token_type"] = "input"
			m.collector.RecordCounter("judge_tokens_total", float64(tokensIn), labels)

			labels["token_type"] = "output"
			m.collector.RecordCounter("judge_tokens_total", float64(tokensOut), labels)
		}
	}

	return response, tokensIn, tokensOut, err
}

// requestStatus maps a request outcome to its metric label.
func requestStatus(ctx context.Context, err error) string {
	if err == nil {
		return "success"
	}
	if ctx.Err() == context.DeadlineExceeded {
		return "timeout"
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.Type {
		case ErrorTypeTimeout:
			return "timeout"
		case ErrorTypeRateLimit:
			return "rate_limited"
		}
	}
	return "error"
}

func (m *metricsLLM) GetModel() string { return m.next.GetModel() }

func (m *metricsLLM) SetModel(model string) { m.next.SetModel(model) }
