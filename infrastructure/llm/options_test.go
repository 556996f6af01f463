package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestOptions(t *testing.T) {
	t.Run("nil map yields defaults", func(t *testing.T) {
		options := ParseRequestOptions(nil, "default-model")

		assert.Equal(t, DefaultMaxTokens, options.MaxTokens)
		assert.Equal(t, "default-model", options.Model)
		assert.Nil(t, options.Temperature)
		assert.Nil(t, options.TopP)
		assert.Empty(t, options.System)
		assert.Empty(t, options.Extra)
	})

	t.Run("valid values are honored", func(t *testing.T) {
		options := ParseRequestOptions(map[string]any{
			"max_tokens":  256,
			"model":       "override-model",
			"temperature": 0.7,
			"top_p":       0.9,
			"system":      "act as a grader",
		}, "default-model")

		assert.Equal(t, 256, options.MaxTokens)
		assert.Equal(t, "override-model", options.Model)
		require.NotNil(t, options.Temperature)
		assert.Equal(t, 0.7, *options.Temperature)
		require.NotNil(t, options.TopP)
		assert.Equal(t, 0.9, *options.TopP)
		assert.Equal(t, "act as a grader", options.System)
	})

	t.Run("invalid values fall back to defaults", func(t *testing.T) {
		options := ParseRequestOptions(map[string]any{
			"max_tokens":  -5,
			"model":       "",
			"temperature": 9.0,
			"top_p":       2.0,
		}, "default-model")

		assert.Equal(t, DefaultMaxTokens, options.MaxTokens)
		assert.Equal(t, "default-model", options.Model)
		assert.Nil(t, options.Temperature, "out-of-range temperature should be dropped")
		assert.Nil(t, options.TopP, "out-of-range top_p should be dropped")
	})

	t.Run("zero temperature survives", func(t *testing.T) {
		options := ParseRequestOptions(map[string]any{"temperature": 0.0}, "m")

		require.NotNil(t, options.Temperature)
		assert.Equal(t, 0.0, *options.Temperature)
	})

	t.Run("unknown keys land in Extra", func(t *testing.T) {
		options := ParseRequestOptions(map[string]any{
			"temperature": 0.5,
			"top_k":       20,
		}, "m")

		assert.Equal(t, map[string]any{"top_k": 20}, options.Extra)
	})
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expected    string
		expectError bool
	}{
		{name: "empty is valid", url: "", expected: ""},
		{name: "https URL", url: "https://api.example.com/v1", expected: "https://api.example.com/v1"},
		{name: "http URL", url: "http://localhost:8080", expected: "http://localhost:8080"},
		{name: "missing scheme", url: "api.example.com", expectError: true},
		{name: "wrong scheme", url: "ftp://api.example.com", expectError: true},
		{name: "missing host", url: "https://", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateBaseURL(tt.url)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidateTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), ValidateTimeout(0), "zero means no provider timeout")
	assert.Equal(t, time.Duration(0), ValidateTimeout(-time.Second), "negative means no provider timeout")
	assert.Equal(t, MinTimeout, ValidateTimeout(time.Millisecond), "sub-second timeouts clamp up")
	assert.Equal(t, MaxTimeout, ValidateTimeout(time.Hour), "excessive timeouts clamp down")
	assert.Equal(t, 30*time.Second, ValidateTimeout(30*time.Second), "sane timeouts pass through")
}

func TestSafeFloat32(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected float32
		ok       bool
	}{
		{name: "float32", value: float32(1.5), expected: 1.5, ok: true},
		{name: "float64 in range", value: 1.5, expected: 1.5, ok: true},
		{name: "float64 overflow", value: 1e39, ok: false},
		{name: "int", value: 7, expected: 7, ok: true},
		{name: "int64 in range", value: int64(1024), expected: 1024, ok: true},
		{name: "int64 beyond exact range", value: int64(1 << 25), ok: false},
		{name: "string", value: "1.5", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SafeFloat32(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestClamps(t *testing.T) {
	assert.Equal(t, 0.0, ClampFloat64(-1.0, 0.0, 2.0))
	assert.Equal(t, 2.0, ClampFloat64(3.0, 0.0, 2.0))
	assert.Equal(t, 1.0, ClampFloat64(1.0, 0.0, 2.0))

	assert.Equal(t, 1, ClampInt(0, 1, 40))
	assert.Equal(t, 40, ClampInt(100, 1, 40))
	assert.Equal(t, 20, ClampInt(20, 1, 40))
}
