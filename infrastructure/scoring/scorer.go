// Package scoring produces relevancy scores for (query, answer) pairs.
//
// The primary path asks an LLM judge to grade the answer under a strict
// JSON-only output contract. Every judge failure (transport error,
// empty reply, unparsable JSON, missing or non-finite score) routes
// silently to a deterministic lexical-overlap fallback, so Score always
// returns a usable integer in [0,100] and never an error. Each attempt
// is logged and counted for operational diagnosis without affecting the
// returned value.
package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/answerbench/answerbench/internal/domain"
	"github.com/answerbench/answerbench/internal/ports"
)

var _ ports.RelevancyScorer = (*Scorer)(nil)

// validate is the package-level validator shared by configuration and
// judge-reply checks.
var validate = validator.New()

// Fallback reasons recorded in logs and metrics when the judge path
// cannot produce a score.
const (
	FallbackJudgeCall  = "judge_call_failed"
	FallbackEmptyReply = "empty_reply"
	FallbackBadReply   = "unparsable_reply"
)

// Config holds the judge invocation parameters.
type Config struct {
	// Temperature controls judge sampling; relevancy grading wants it
	// low.
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0,max=2"`

	// MaxTokens bounds the judge reply; the contract reply is a single
	// small JSON object.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"min=1,max=8192"`
}

// DefaultConfig returns the judge parameters used in production.
func DefaultConfig() Config {
	return Config{Temperature: 0, MaxTokens: 256}
}

// Scorer implements ports.RelevancyScorer with a judge-then-fallback
// pipeline. It is stateless apart from its collaborators and safe for
// concurrent use.
type Scorer struct {
	client  ports.LLMClient
	metrics ports.MetricsCollector
	config  Config
	log     *logrus.Entry
	tracer  trace.Tracer
}

// ScoreDetail reports how a score was produced, for diagnostics and
// tests. The public scoring surfaces only ever expose the Score field.
type ScoreDetail struct {
	// Score is the final clamped score in [0,100].
	Score int

	// FromJudge is true when the judge reply produced the score, false
	// when the lexical fallback did.
	FromJudge bool

	// FallbackReason names why the fallback ran; empty on the judge
	// path.
	FallbackReason string
}

// NewScorer creates a Scorer backed by the given judge client.
// The metrics collector may be nil, in which case metrics are dropped.
func NewScorer(client ports.LLMClient, metrics ports.MetricsCollector, config Config) (*Scorer, error) {
	if client == nil {
		return nil, errors.New("scorer requires an LLM client")
	}
	if err := validate.Struct(config); err != nil {
		return nil, err
	}
	return &Scorer{
		client:  client,
		metrics: metrics,
		config:  config,
		log:     logrus.WithField("component", "scorer"),
		tracer:  otel.Tracer("answerbench/scoring"),
	}, nil
}

// Score evaluates how relevant answer is to query and returns an
// integer in [0,100]. It never fails: judge problems of any kind are
// logged and absorbed by the lexical fallback.
func (s *Scorer) Score(ctx context.Context, query string, answer any) int {
	return s.ScoreWithDetail(ctx, query, answer).Score
}

// ScoreWithDetail is Score plus provenance: whether the judge or the
// fallback produced the value, and why the fallback ran.
func (s *Scorer) ScoreWithDetail(ctx context.Context, query string, answer any) ScoreDetail {
	ctx, span := s.tracer.Start(ctx, "Scorer.Score",
		trace.WithAttributes(
			attribute.String("judge.model", s.client.GetModel()),
			attribute.Int("query.chars", len(query)),
		),
	)
	defer span.End()

	start := time.Now()
	text := AnswerText(answer)

	detail := ScoreDetail{FromJudge: true}
	score, err := s.judgeScore(ctx, query, text)
	if err != nil {
		detail.FromJudge = false
		detail.FallbackReason = fallbackReason(err)
		span.RecordError(err)
		s.log.WithFields(logrus.Fields{
			"model":  s.client.GetModel(),
			"reason": detail.FallbackReason,
		}).WithError(err).Warn("judge scoring failed, using lexical fallback")
		s.count("scoring_fallback_total", map[string]string{"reason": detail.FallbackReason})
		score = LexicalScore(query, text)
	}
	detail.Score = domain.ClampScore(score)

	latency := time.Since(start)
	span.SetAttributes(
		attribute.Int("score.value", detail.Score),
		attribute.Bool("score.from_judge", detail.FromJudge),
		attribute.Int64("score.latency_ms", latency.Milliseconds()),
	)
	if s.metrics != nil {
		s.metrics.RecordLatency("score", latency, nil)
	}
	s.log.WithFields(logrus.Fields{
		"score":      detail.Score,
		"from_judge": detail.FromJudge,
		"latency_ms": latency.Milliseconds(),
	}).Debug("scored answer")
	return detail
}

// judgeScore renders the judge prompt, invokes the judge, and parses
// the strict-contract reply into a raw (unclamped) score.
func (s *Scorer) judgeScore(ctx context.Context, query, answer string) (int, error) {
	prompt, err := renderJudgePrompt(query, answer)
	if err != nil {
		return 0, err
	}

	options := map[string]any{
		"temperature": s.config.Temperature,
		"max_tokens":  s.config.MaxTokens,
	}
	reply, err := s.client.Complete(ctx, prompt, options)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{
		"model":       s.client.GetModel(),
		"reply_chars": len(reply),
	}).Debug("judge replied")

	return parseJudgeReply(reply)
}

func (s *Scorer) count(metric string, labels map[string]string) {
	if s.metrics != nil {
		s.metrics.RecordCounter(metric, 1, labels)
	}
}

// fallbackReason maps a judge-path error to its diagnostic label.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errEmptyReply):
		return FallbackEmptyReply
	case errors.Is(err, errUnparsableReply):
		return FallbackBadReply
	default:
		return FallbackJudgeCall
	}
}
