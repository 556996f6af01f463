package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClampScore verifies that scores are forced into the [0,100] range.
func TestClampScore(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  int
	}{
		{name: "below floor", score: -5, want: 0},
		{name: "at floor", score: 0, want: 0},
		{name: "in range", score: 73, want: 73},
		{name: "at ceiling", score: 100, want: 100},
		{name: "above ceiling", score: 140, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampScore(tt.score))
		})
	}
}

// TestQueryResult_JSONShape verifies the wire shape consumed by the
// comparison UI: one entry per source with answer, relevancy, and
// latency fields.
func TestQueryResult_JSONShape(t *testing.T) {
	result := QueryResult{
		ID:    "3e9a7a2e-8a56-4a1b-9be5-0f5cb4f4c7a1",
		Query: "total receivables last quarter",
		Results: []SourceResult{
			{
				Source:    "ledger-agent",
				Answer:    AnswerModel{OutputType: OutputTypeText, Summary: "1,250"},
				Relevancy: 88,
				LatencyMs: 412,
			},
			{
				Source:    "report-agent",
				Answer:    AnswerModel{OutputType: OutputTypeText, Summary: "upstream source unreachable"},
				Relevancy: 30,
				LatencyMs: 20,
				Failed:    true,
			},
		},
	}

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	entries, ok := decoded["results"].([]any)
	require.True(t, ok, "results should marshal as an array.")
	require.Len(t, entries, 2)

	first, ok := entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ledger-agent", first["source"])
	assert.Equal(t, float64(88), first["relevancy"])
	assert.Equal(t, float64(412), first["latency_ms"])
	assert.NotContains(t, first, "failed", "healthy entries should omit the failed marker.")

	second, ok := entries[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, second["failed"])
}
