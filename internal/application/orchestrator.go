// Package application orchestrates one user query across every
// configured upstream answer source: concurrent fan-out with per-source
// failure isolation, normalization of each raw payload into the
// canonical model, concurrent relevancy scoring, and assembly of the
// final QueryResult in source-declaration order.
package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/answerbench/answerbench/infrastructure/normalizer"
	"github.com/answerbench/answerbench/internal/config"
	"github.com/answerbench/answerbench/internal/domain"
	"github.com/answerbench/answerbench/internal/ports"
)

// Orchestrator runs the full query pipeline. It holds no per-query
// state: every Run produces a fresh, immutable QueryResult, and
// concurrent Runs are independent.
type Orchestrator struct {
	sources []config.Source
	fetcher *sourceFetcher
	scorer  ports.RelevancyScorer
	metrics ports.MetricsCollector
	log     *logrus.Entry
	tracer  trace.Tracer
}

// NewOrchestrator wires the pipeline against a fixed source roster.
// sourceTimeout bounds each upstream call at the transport level; the
// orchestrator itself imposes no deadline, so a slow source is awaited
// until its transport gives up.
func NewOrchestrator(
	sources []config.Source,
	sourceTimeout time.Duration,
	scorer ports.RelevancyScorer,
	metrics ports.MetricsCollector,
) (*Orchestrator, error) {
	if len(sources) == 0 {
		return nil, domain.ErrNoSources
	}
	if scorer == nil {
		return nil, errors.New("orchestrator requires a relevancy scorer")
	}
	if sourceTimeout <= 0 {
		return nil, errors.New("source timeout must be positive")
	}

	log := logrus.WithField("component", "orchestrator")
	roster := make([]config.Source, len(sources))
	copy(roster, sources)

	return &Orchestrator{
		sources: roster,
		fetcher: newSourceFetcher(sourceTimeout, log),
		scorer:  scorer,
		metrics: metrics,
		log:     log,
		tracer:  otel.Tracer("answerbench/application"),
	}, nil
}

// SourceCount reports how many sources each query fans out to.
func (o *Orchestrator) SourceCount() int { return len(o.sources) }

// Run executes one query end to end. The only error it can return is
// domain.ErrEmptyQuery; upstream failures are isolated per source and
// appear in the result as substituted failure answers, and scoring
// failures are absorbed by the scorer's own fallback. Results are
// assembled in source-declaration order regardless of completion order.
func (o *Orchestrator) Run(ctx context.Context, query string) (*domain.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	ctx, span := o.tracer.Start(ctx, "Orchestrator.Run",
		trace.WithAttributes(
			attribute.Int("sources.count", len(o.sources)),
			attribute.Int("query.chars", len(query)),
		),
	)
	defer span.End()

	start := time.Now()
	o.count("queries_total", nil)

	// Join point one: every source settled, success or failure. Workers
	// write to their own slot and never return an error, so one failed
	// source cannot cancel its siblings.
	outcomes := make([]sourceOutcome, len(o.sources))
	fetchGroup, fetchCtx := errgroup.WithContext(ctx)
	for i, src := range o.sources {
		fetchGroup.Go(func() error {
			outcomes[i] = o.fetchSource(fetchCtx, src, query)
			return nil
		})
	}
	_ = fetchGroup.Wait()

	// Join point two: every (query, answer) pair scored. Each source's
	// payload flows through its own normalize-then-score pipeline with
	// no cross-source state.
	results := make([]domain.SourceResult, len(o.sources))
	scoreGroup, scoreCtx := errgroup.WithContext(ctx)
	for i, src := range o.sources {
		outcome := outcomes[i]
		scoreGroup.Go(func() error {
			results[i] = o.scoreOutcome(scoreCtx, src, query, outcome)
			return nil
		})
	}
	_ = scoreGroup.Wait()

	result := &domain.QueryResult{
		ID:        uuid.NewString(),
		Query:     query,
		Results:   results,
		CreatedAt: time.Now().UTC(),
	}

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int64("run.elapsed_ms", elapsed.Milliseconds()))
	o.log.WithFields(logrus.Fields{
		"query_id":   result.ID,
		"sources":    len(results),
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("query completed")

	return result, nil
}

// fetchSource settles one source and records its request metrics.
func (o *Orchestrator) fetchSource(ctx context.Context, src config.Source, query string) sourceOutcome {
	outcome := o.fetcher.fetch(ctx, src, query)

	status := "success"
	if outcome.failed {
		status = "failure"
	}
	o.count("source_requests_total", map[string]string{"source": src.Label, "status": status})
	if o.metrics != nil {
		o.metrics.RecordLatency("source", outcome.latency, map[string]string{"source": src.Label})
	}
	return outcome
}

// scoreOutcome normalizes one settled payload and scores it against the
// query. The scorer judges the canonical model; only when normalization
// found nothing usable does the raw payload text stand in for it.
func (o *Orchestrator) scoreOutcome(ctx context.Context, src config.Source, query string, outcome sourceOutcome) domain.SourceResult {
	model := normalizer.Normalize(outcome.payload)

	var answer any = model
	if model.IsEmpty() {
		answer = string(outcome.payload)
	}
	score := o.scorer.Score(ctx, query, answer)

	if o.metrics != nil {
		o.metrics.RecordHistogram("relevancy_score", float64(score), map[string]string{"source": src.Label})
	}
	return domain.SourceResult{
		Source:    src.Label,
		Answer:    model,
		Relevancy: score,
		LatencyMs: outcome.latency.Milliseconds(),
		Failed:    outcome.failed,
	}
}

func (o *Orchestrator) count(metric string, labels map[string]string) {
	if o.metrics != nil {
		o.metrics.RecordCounter(metric, 1, labels)
	}
}
