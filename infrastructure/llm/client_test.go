package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Validation(t *testing.T) {
	t.Run("empty API key fails", func(t *testing.T) {
		_, err := NewClient("openai", ClientConfig{Model: "gpt-4o-mini"})
		assert.ErrorIs(t, err, ErrEmptyAPIKey)
	})

	t.Run("unknown provider fails", func(t *testing.T) {
		_, err := NewClient("mystery", ClientConfig{APIKey: "key"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider: mystery")
	})

	t.Run("registered provider succeeds", func(t *testing.T) {
		client, err := NewClient("openai", ClientConfig{APIKey: "key", Model: "gpt-4o-mini"})
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", client.GetModel())
	})

	t.Run("model defaults per provider", func(t *testing.T) {
		client, err := NewClient("openai", ClientConfig{APIKey: "key"})
		require.NoError(t, err)
		assert.Equal(t, OpenAIDefaultModel, client.GetModel())
	})
}

func TestNewClient_MiddlewareOrder(t *testing.T) {
	// Given a custom provider and middleware that record wrapping order
	mock := NewMockCoreLLM()
	RegisterProviderFactory("order-probe", func(ClientConfig) (CoreLLM, error) {
		return mock, nil
	})

	var order []string
	tag := func(name string) Middleware {
		return func(next CoreLLM) CoreLLM {
			return &taggingLLM{next: next, name: name, order: &order}
		}
	}

	client, err := NewClient("order-probe", ClientConfig{
		APIKey:     "key",
		Middleware: []Middleware{tag("first"), tag("second"), tag("third")},
	})
	require.NoError(t, err)

	// When making a request
	_, err = client.Complete(context.Background(), "prompt", nil)
	require.NoError(t, err)

	// Then the first configured middleware should run outermost
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

type taggingLLM struct {
	next  CoreLLM
	name  string
	order *[]string
}

func (l *taggingLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	*l.order = append(*l.order, l.name)
	return l.next.DoRequest(ctx, prompt, opts)
}

func (l *taggingLLM) GetModel() string  { return l.next.GetModel() }
func (l *taggingLLM) SetModel(m string) { l.next.SetModel(m) }

func TestClient_Complete(t *testing.T) {
	mock := NewMockCoreLLM()
	RegisterProviderFactory("complete-probe", func(ClientConfig) (CoreLLM, error) {
		return mock, nil
	})

	client, err := NewClient("complete-probe", ClientConfig{APIKey: "key"})
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), "grade this", map[string]any{"temperature": 0.0})
	require.NoError(t, err)
	assert.Equal(t, `{"score": 80}`, reply)
	assert.Equal(t, "grade this", mock.LastPrompt, "prompt should reach the provider")
	assert.Equal(t, 0.0, mock.LastOpts["temperature"], "options should reach the provider")
}

func TestClient_EstimateTokens(t *testing.T) {
	mock := NewMockCoreLLM()
	RegisterProviderFactory("estimate-probe", func(ClientConfig) (CoreLLM, error) {
		return mock, nil
	})

	client, err := NewClient("estimate-probe", ClientConfig{APIKey: "key"})
	require.NoError(t, err)

	// The default estimator assumes roughly four characters per token.
	count, err := client.EstimateTokens("twelve chars")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
