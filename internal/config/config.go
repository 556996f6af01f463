// Package config loads process configuration: judge credentials and
// tuning from the environment (with optional dotenv support) and the
// upstream source roster from a YAML file. Configuration is loaded once
// at startup into an immutable value that is passed explicitly into the
// orchestrator, scorer, and server; nothing reads ambient globals after
// Load returns.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultJudgeProvider     = "google"
	DefaultJudgeTimeoutSecs  = 30
	DefaultJudgeMaxRetries   = 2
	DefaultJudgeRequestsPS   = 5.0
	DefaultSourcesFile       = "sources.yaml"
	DefaultSourceTimeoutSecs = 60
	DefaultListenAddr        = ":8080"
	DefaultLogLevel          = "info"
)

var validate = validator.New()

// Config is the complete, validated process configuration.
type Config struct {
	// Judge configures the relevancy judge's LLM provider.
	Judge JudgeConfig `validate:"required"`

	// Sources lists the upstream answer services, in the order their
	// results will appear in every QueryResult.
	Sources []Source `validate:"required,min=1,dive"`

	// SourceTimeoutSeconds bounds each upstream HTTP call at the
	// transport level. The orchestrator itself imposes no deadline.
	SourceTimeoutSeconds int `validate:"min=1,max=3600"`

	// ListenAddr is the HTTP listen address for serve mode.
	ListenAddr string `validate:"required"`

	// LogLevel is a logrus level name; unparsable values fall back to
	// info at startup.
	LogLevel string `validate:"required"`
}

// JudgeConfig carries everything needed to construct the judge client.
// APIKey is the one hard startup requirement: without it the judge path
// can never be exercised, so its absence is a configuration error
// surfaced at launch rather than a per-request concern.
type JudgeConfig struct {
	// Provider selects the LLM backend.
	Provider string `validate:"required,oneof=openai anthropic google"`

	// APIKey authenticates against the provider. Required.
	APIKey string `validate:"required"`

	// Model overrides the provider's default model when non-empty.
	Model string

	// TimeoutSeconds bounds each judge call.
	TimeoutSeconds int `validate:"min=1,max=600"`

	// MaxRetries is the number of retry attempts after the initial
	// judge call, 0 disables retries.
	MaxRetries int `validate:"min=0,max=10"`

	// RequestsPerSecond rate-limits judge traffic across all
	// concurrent scoring calls.
	RequestsPerSecond float64 `validate:"gt=0,max=1000"`
}

// Timeout returns the per-call judge deadline as a duration.
func (j JudgeConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// Source describes one upstream answer service.
type Source struct {
	// Label names the source in results, logs, and metrics.
	Label string `yaml:"label" validate:"required,min=1,max=100"`

	// URL is the source's query endpoint, called with POST {"query": ...}.
	URL string `yaml:"url" validate:"required,url"`

	// APIKey, when set, is sent as a bearer token on every request.
	APIKey string `yaml:"api_key"`
}

// SourceTimeout returns the per-source transport deadline as a duration.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}

// sourcesFile is the on-disk schema of the source roster.
type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// Load reads configuration from the process environment and the sources
// file named by SOURCES_FILE. A .env file in the working directory is
// loaded first when present; its absence is not an error.
func Load() (*Config, error) {
	return LoadFrom("", "")
}

// LoadFrom is Load with explicit file overrides. A non-empty envFile
// must exist and parse; a non-empty sourcesPath takes precedence over
// the SOURCES_FILE environment variable.
func LoadFrom(envFile, sourcesPath string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// Best effort; a missing .env simply means the environment is
		// already populated.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Judge: JudgeConfig{
			Provider: envOr("JUDGE_PROVIDER", DefaultJudgeProvider),
			APIKey:   strings.TrimSpace(os.Getenv("JUDGE_API_KEY")),
			Model:    strings.TrimSpace(os.Getenv("JUDGE_MODEL")),
		},
		ListenAddr: envOr("LISTEN_ADDR", DefaultListenAddr),
		LogLevel:   envOr("LOG_LEVEL", DefaultLogLevel),
	}

	var err error
	if cfg.Judge.TimeoutSeconds, err = envInt("JUDGE_TIMEOUT_SECONDS", DefaultJudgeTimeoutSecs); err != nil {
		return nil, err
	}
	if cfg.Judge.MaxRetries, err = envInt("JUDGE_MAX_RETRIES", DefaultJudgeMaxRetries); err != nil {
		return nil, err
	}
	if cfg.Judge.RequestsPerSecond, err = envFloat("JUDGE_REQUESTS_PER_SECOND", DefaultJudgeRequestsPS); err != nil {
		return nil, err
	}
	if cfg.SourceTimeoutSeconds, err = envInt("SOURCE_TIMEOUT_SECONDS", DefaultSourceTimeoutSecs); err != nil {
		return nil, err
	}

	if cfg.Judge.APIKey == "" {
		return nil, fmt.Errorf("JUDGE_API_KEY is required: the relevancy judge cannot run without a credential")
	}

	if sourcesPath == "" {
		sourcesPath = envOr("SOURCES_FILE", DefaultSourcesFile)
	}
	cfg.Sources, err = LoadSources(sourcesPath)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadSources reads and validates the source roster from a YAML file.
// Decoding is strict: unknown fields are rejected so configuration
// typos surface at startup instead of being silently ignored.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	var file sourcesFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s declares no sources", path)
	}
	seen := make(map[string]struct{}, len(file.Sources))
	for i, src := range file.Sources {
		if err := validate.Struct(src); err != nil {
			return nil, fmt.Errorf("invalid source %d (%s): %w", i, src.Label, err)
		}
		if _, dup := seen[src.Label]; dup {
			return nil, fmt.Errorf("duplicate source label %q", src.Label)
		}
		seen[src.Label] = struct{}{}
	}

	return file.Sources, nil
}

// envOr returns the trimmed value of key, or fallback when unset or
// blank.
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envInt parses an integer environment variable, returning fallback
// when unset and an error when set but unparsable.
func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

// envFloat parses a float environment variable, returning fallback
// when unset and an error when set but unparsable.
func envFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
