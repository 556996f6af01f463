package domain

import (
	"time"
)

// Relevancy score bounds. Scores outside this range never leave the
// scoring pipeline.
const (
	ScoreMin = 0
	ScoreMax = 100
)

// ClampScore forces a score into [ScoreMin, ScoreMax].
func ClampScore(score int) int {
	if score < ScoreMin {
		return ScoreMin
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return score
}

// SourceResult is one source's slot in a QueryResult: the normalized
// answer, its relevancy to the query, and how long the source took.
type SourceResult struct {
	// Source is the declared label of the upstream service.
	Source string `json:"source"`

	// Answer is the canonical model produced by normalization. Failed
	// sources still yield one, carrying the failure text as summary.
	Answer AnswerModel `json:"answer"`

	// Relevancy is the judge-or-fallback score in [0,100].
	Relevancy int `json:"relevancy"`

	// LatencyMs measures dispatch to fully-read response body in
	// milliseconds.
	LatencyMs int64 `json:"latency_ms"`

	// Failed marks sources whose answer is a substituted failure
	// summary rather than real upstream content.
	Failed bool `json:"failed,omitempty"`
}

// QueryResult is the aggregate outcome of one orchestrated query.
// Results appear in source-declaration order regardless of completion
// order. A QueryResult is immutable once assembled and is replaced
// wholesale by the next query, never merged.
type QueryResult struct {
	// ID uniquely identifies this query run (a UUID).
	ID string `json:"id"`

	// Query is the user question the sources were asked.
	Query string `json:"query"`

	// Results holds one entry per configured source, in declaration
	// order.
	Results []SourceResult `json:"results"`

	// CreatedAt records when the aggregate was assembled.
	CreatedAt time.Time `json:"created_at"`
}
