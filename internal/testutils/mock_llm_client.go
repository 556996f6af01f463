// Package testutils provides shared test doubles for the scoring and
// orchestration pipelines.
package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/answerbench/answerbench/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.LLMClient = (*MockLLMClient)(nil)

// MockLLMClient implements ports.LLMClient with deterministic replies
// selected by prompt substring, plus failure injection for exercising
// the fallback paths. It is safe for concurrent use so orchestrator
// tests can score in parallel.
type MockLLMClient struct {
	mu         sync.Mutex
	model      string
	replies    []MockReply
	err        error
	calls      int
	lastPrompt string
}

// MockReply binds a prompt substring to the reply the mock returns for
// prompts containing it. Patterns are tried in registration order.
type MockReply struct {
	// Pattern is matched as a case-insensitive substring of the prompt.
	Pattern string
	// Reply is the raw text returned for matching prompts.
	Reply string
}

// NewMockLLMClient creates a mock that answers every prompt with a
// contract-conforming score reply until configured otherwise.
func NewMockLLMClient(model string) *MockLLMClient {
	return &MockLLMClient{
		model:   model,
		replies: []MockReply{{Pattern: "", Reply: `{"score": 75}`}},
	}
}

// AddReply registers a reply for prompts containing pattern. Later
// registrations take precedence over earlier ones.
func (m *MockLLMClient) AddReply(reply MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append([]MockReply{reply}, m.replies...)
}

// SetReply replaces all registered replies with a single unconditional
// one.
func (m *MockLLMClient) SetReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = []MockReply{{Pattern: "", Reply: reply}}
}

// FailWith makes every subsequent Complete call return err. Passing nil
// restores normal behavior.
func (m *MockLLMClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete returns the first registered reply whose pattern occurs in
// the prompt, the injected error when one is set, or the default reply.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt = prompt

	if m.err != nil {
		return "", m.err
	}

	promptLower := strings.ToLower(prompt)
	for _, r := range m.replies {
		if r.Pattern == "" || strings.Contains(promptLower, strings.ToLower(r.Pattern)) {
			return r.Reply, nil
		}
	}
	return `{"score": 75}`, nil
}

// EstimateTokens approximates tokens as one per four characters, the
// same heuristic the production estimator uses.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel returns the mock model identifier.
func (m *MockLLMClient) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// SetModel updates the mock model identifier.
func (m *MockLLMClient) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

// Calls reports how many Complete invocations the mock has served.
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompt returns the most recent prompt passed to Complete.
func (m *MockLLMClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}
