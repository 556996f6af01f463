package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results(scores ...int) []SourceResult {
	out := make([]SourceResult, len(scores))
	for i, s := range scores {
		out[i] = SourceResult{Source: string(rune('a' + i)), Relevancy: s}
	}
	return out
}

func TestBestResult(t *testing.T) {
	t.Run("empty returns nil", func(t *testing.T) {
		assert.Nil(t, BestResult(nil))
		assert.Nil(t, BestResult([]SourceResult{}))
	})

	t.Run("picks highest score", func(t *testing.T) {
		best := BestResult(results(40, 92, 71))
		require.NotNil(t, best)
		assert.Equal(t, 92, best.Relevancy)
		assert.Equal(t, "b", best.Source)
	})

	t.Run("tie goes to earlier source", func(t *testing.T) {
		best := BestResult(results(88, 88, 70))
		require.NotNil(t, best)
		assert.Equal(t, "a", best.Source)
	})
}

func TestMeanRelevancy(t *testing.T) {
	assert.Zero(t, MeanRelevancy(nil))
	assert.InDelta(t, 70.0, MeanRelevancy(results(40, 80, 90)), 0.001)
	assert.InDelta(t, 85.0, MeanRelevancy(results(80, 90)), 0.001)
}

func TestMedianRelevancy(t *testing.T) {
	assert.Zero(t, MedianRelevancy(nil))
	assert.InDelta(t, 80.0, MedianRelevancy(results(90, 80, 40)), 0.001)
	assert.InDelta(t, 85.0, MedianRelevancy(results(90, 80)), 0.001)
	assert.InDelta(t, 55.0, MedianRelevancy(results(55)), 0.001)
}
