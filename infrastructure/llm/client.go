// Package llm provides the judge client used for relevancy grading,
// abstracting multiple LLM providers behind a common interface.
//
// Providers (OpenAI, Anthropic, Google) implement the CoreLLM interface
// and are wrapped with middleware for timeouts, retries, rate limiting,
// and metrics. The assembled client satisfies ports.LLMClient, so the
// scoring layer never sees provider-specific types.
//
// Basic usage:
//
//	client, err := llm.NewClient("google", llm.ClientConfig{
//	    APIKey: os.Getenv("JUDGE_API_KEY"),
//	    Model:  "gemini-2.0-flash",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(5, 10),
//	        llm.RetryMiddleware(2, 500*time.Millisecond, 10*time.Second),
//	        llm.TimeoutMiddleware(30 * time.Second),
//	    },
//	})
//	reply, err := client.Complete(ctx, prompt, nil)
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/answerbench/answerbench/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement. Middleware
// wraps any conforming implementation, so cross-cutting behavior stays
// out of provider code.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the reply
	// text together with input and output token counts. The opts map
	// carries request parameters such as temperature and max_tokens.
	DoRequest(
		ctx context.Context,
		prompt string,
		opts map[string]any,
	) (
		response string,
		tokensIn, tokensOut int,
		err error,
	)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel switches the model used for subsequent requests.
	SetModel(model string)
}

// TokenEstimator approximates token counts for text when the provider
// has not reported exact usage.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// ClientConfig holds everything needed to assemble a judge client:
// credentials, model selection, and the middleware chain.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model selects the judge model. Empty picks the provider default.
	Model string

	// BaseURL overrides the provider endpoint, for proxies and tests.
	// Empty uses the provider's default endpoint.
	BaseURL string

	// Timeout bounds individual HTTP requests at the provider client
	// level. Zero means no provider-level timeout.
	Timeout time.Duration

	// TokenEstimator supplies custom token counting. Nil falls back to
	// a character-based estimate.
	TokenEstimator TokenEstimator

	// Middleware wraps the provider in order: the first entry becomes
	// the outermost layer.
	Middleware []Middleware
}

// Middleware wraps a CoreLLM to add behavior around requests.
type Middleware func(CoreLLM) CoreLLM

var _ ports.LLMClient = (*Client)(nil)

// Client adapts a middleware-wrapped CoreLLM to ports.LLMClient.
type Client struct {
	core      CoreLLM
	estimator TokenEstimator
}

// NewClient assembles a judge client for the named provider. Provider
// names are registered by the provider files in this package; unknown
// names fail here rather than at request time.
func NewClient(providerType string, config ClientConfig) (ports.LLMClient, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", providerType, err)
	}

	// Apply middleware in reverse so the first configured entry ends up
	// outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	estimator := config.TokenEstimator
	if estimator == nil {
		estimator = &SimpleTokenEstimator{}
	}

	return &Client{core: core, estimator: estimator}, nil
}

// Complete sends a prompt and returns the reply text, discarding token
// usage.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.CompleteWithUsage(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends a prompt and returns the reply text together
// with input and output token counts.
func (c *Client) CompleteWithUsage(
	ctx context.Context,
	prompt string,
	options map[string]any,
) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// EstimateTokens approximates the token count of text using the
// configured estimator.
func (c *Client) EstimateTokens(text string) (int, error) {
	return c.estimator.EstimateTokens(text), nil
}

// GetModel returns the model name of the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }

// SimpleTokenEstimator approximates tokens as one per four characters,
// which is close enough for English prompts.
type SimpleTokenEstimator struct{}

func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ProviderFactory builds a CoreLLM from client configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a name usable with
// NewClient. Called from provider init functions.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}
