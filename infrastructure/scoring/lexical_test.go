package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexicalScore(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		answer   string
		expected int
	}{
		{
			name:     "full overlap scores the maximum",
			query:    "total revenue for 2023",
			answer:   "the total revenue for 2023 was 4.5M",
			expected: 100,
		},
		{
			name:     "no overlap sits on the floor",
			query:    "quarterly dividend payout",
			answer:   "an unrelated sentence about weather",
			expected: 30,
		},
		{
			name:     "half overlap maps linearly",
			query:    "revenue profit",
			answer:   "revenue only",
			expected: 50,
		},
		{
			name:     "three of four tokens",
			query:    "net profit margin 2022",
			answer:   "the net profit margin improved",
			expected: 75,
		},
		{
			name:     "below-floor fraction is lifted to the floor",
			query:    "alpha beta gamma delta epsilon",
			answer:   "alpha",
			expected: 30,
		},
		{
			name:     "case folding matches across cases",
			query:    "EBITDA Margin",
			answer:   "the ebitda margin was stable",
			expected: 100,
		},
		{
			// The query folds and splits into seven word tokens; four of
			// them appear in the answer, and 4/7 rounds to 57.
			name:     "punctuation does not block matches",
			query:    "what is the debt-to-equity ratio?",
			answer:   "debt to equity ratio: 0.8",
			expected: 57,
		},
		{
			name:     "repeated query tokens count per occurrence",
			query:    "cash cash flow",
			answer:   "flow",
			expected: 33,
		},
		{
			name:     "empty query yields the floor",
			query:    "",
			answer:   "anything at all",
			expected: 30,
		},
		{
			name:     "punctuation-only query yields the floor",
			query:    "?!...",
			answer:   "anything at all",
			expected: 30,
		},
		{
			name:     "empty answer yields the floor",
			query:    "operating income",
			answer:   "",
			expected: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LexicalScore(tt.query, tt.answer))
		})
	}
}

func TestLexicalScore_Deterministic(t *testing.T) {
	query := "compare gross margin across the last three quarters"
	answer := "gross margin was 38%, 40%, and 41% across the last three quarters"

	first := LexicalScore(query, answer)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, LexicalScore(query, answer))
	}
}

func TestLexicalScore_Bounds(t *testing.T) {
	inputs := []struct{ query, answer string }{
		{"", ""},
		{"a", strings.Repeat("a ", 500)},
		{"one two three four five six seven eight nine ten", "ten"},
		{"revenue", "revenue"},
	}

	for _, in := range inputs {
		score := LexicalScore(in.query, in.answer)
		assert.GreaterOrEqual(t, score, FallbackFloor)
		assert.LessOrEqual(t, score, 100)
	}
}
