package testutils

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMockLLMClient_Complete verifies pattern selection, the default
// reply, and failure injection.
func TestMockLLMClient_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("default reply conforms to the score contract", func(t *testing.T) {
		client := NewMockLLMClient("mock-model")
		reply, err := client.Complete(ctx, "grade this answer", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"score": 75}`, reply)
	})

	t.Run("pattern match wins over default", func(t *testing.T) {
		client := NewMockLLMClient("mock-model")
		client.AddReply(MockReply{Pattern: "balance sheet", Reply: `{"score": 91}`})

		reply, err := client.Complete(ctx, "Question:\nwhat does the Balance Sheet show?", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"score": 91}`, reply)
	})

	t.Run("injected failure surfaces as error", func(t *testing.T) {
		client := NewMockLLMClient("mock-model")
		boom := errors.New("connection refused")
		client.FailWith(boom)

		_, err := client.Complete(ctx, "anything", nil)
		assert.ErrorIs(t, err, boom)

		client.FailWith(nil)
		_, err = client.Complete(ctx, "anything", nil)
		assert.NoError(t, err)
	})

	t.Run("records calls and last prompt", func(t *testing.T) {
		client := NewMockLLMClient("mock-model")
		_, err := client.Complete(ctx, "first", nil)
		require.NoError(t, err)
		_, err = client.Complete(ctx, "second", nil)
		require.NoError(t, err)

		assert.Equal(t, 2, client.Calls())
		assert.Equal(t, "second", client.LastPrompt())
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		client := NewMockLLMClient("mock-model")
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.Complete(cancelled, "anything", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// TestMockLLMClient_Concurrent verifies the mock tolerates the parallel
// scoring the orchestrator performs.
func TestMockLLMClient_Concurrent(t *testing.T) {
	client := NewMockLLMClient("mock-model")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Complete(context.Background(), "concurrent prompt", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, client.Calls())
}
