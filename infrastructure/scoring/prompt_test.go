package scoring

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/answerbench/answerbench/internal/domain"
)

func TestRenderJudgePrompt(t *testing.T) {
	prompt, err := renderJudgePrompt("what drove the margin change?", "lower input costs drove it")
	require.NoError(t, err)

	assert.Contains(t, prompt, "Question:\nwhat drove the margin change?")
	assert.Contains(t, prompt, "Answer:\nlower input costs drove it")
	assert.Contains(t, prompt, "balance sheets")
	assert.Contains(t, prompt, "exactly one JSON object")
	assert.True(t, strings.HasSuffix(prompt, `{"score": <integer 0-100>}`))
}

func TestAnswerText(t *testing.T) {
	tests := []struct {
		name     string
		answer   any
		expected string
	}{
		{
			name:     "nil becomes empty",
			answer:   nil,
			expected: "",
		},
		{
			name:     "string passes through",
			answer:   "net income rose 8%",
			expected: "net income rose 8%",
		},
		{
			name:     "bytes pass through",
			answer:   []byte(`{"summary":"raw payload"}`),
			expected: `{"summary":"raw payload"}`,
		},
		{
			name:     "map serializes to JSON",
			answer:   map[string]any{"revenue": 100},
			expected: `{"revenue":100}`,
		},
		{
			name: "answer model serializes with canonical keys",
			answer: domain.AnswerModel{
				OutputType: domain.OutputTypeText,
				Summary:    "stable quarter",
			},
			expected: `{"output_type":"text","summary":"stable quarter"}`,
		},
		{
			name:     "number serializes",
			answer:   42,
			expected: "42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnswerText(tt.answer))
		})
	}
}

func TestAnswerText_Truncation(t *testing.T) {
	t.Run("long text is cut to the limit", func(t *testing.T) {
		long := strings.Repeat("x", maxAnswerChars+500)
		got := AnswerText(long)
		assert.Len(t, got, maxAnswerChars)
		assert.Equal(t, long[:maxAnswerChars], got)
	})

	t.Run("short text is untouched", func(t *testing.T) {
		assert.Equal(t, "short", AnswerText("short"))
	})

	t.Run("multi-byte runes are not split", func(t *testing.T) {
		long := strings.Repeat("é", maxAnswerChars+500)
		got := AnswerText(long)
		assert.True(t, utf8.ValidString(got), "truncation must not produce invalid UTF-8")
		assert.Equal(t, maxAnswerChars, utf8.RuneCountInString(got))
	})
}
