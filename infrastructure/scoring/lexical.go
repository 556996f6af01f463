package scoring

import (
	"math"
	"regexp"

	"golang.org/x/text/cases"

	"github.com/answerbench/answerbench/internal/domain"
)

// FallbackFloor is the lowest score the lexical fallback reports.
// Lexical overlap is a weak signal; a low fraction means "uncertain",
// not "clearly irrelevant", so fallback scores live in [30,100].
const FallbackFloor = 30

// foldCaser is a package-level Unicode case folder, shared across
// calls.
var foldCaser = cases.Fold()

// nonWord splits text on runs of characters outside [0-9A-Za-z_].
var nonWord = regexp.MustCompile(`\W+`)

// LexicalScore is the deterministic fallback: the fraction of query
// tokens that also occur among the answer's tokens, mapped linearly
// onto the score scale and clamped into [FallbackFloor, 100]. Both
// texts are case-folded and tokenized on non-word boundaries. The
// same inputs always produce the same score.
func LexicalScore(query, answer string) int {
	queryTokens := tokens(query)
	if len(queryTokens) == 0 {
		return FallbackFloor
	}

	answerSet := make(map[string]struct{})
	for _, tok := range tokens(answer) {
		answerSet[tok] = struct{}{}
	}

	matched := 0
	for _, tok := range queryTokens {
		if _, ok := answerSet[tok]; ok {
			matched++
		}
	}

	fraction := float64(matched) / float64(len(queryTokens))
	score := int(math.Round(fraction * 100))
	if score < FallbackFloor {
		score = FallbackFloor
	}
	if score > domain.ScoreMax {
		score = domain.ScoreMax
	}
	return score
}

// tokens case-folds s and splits it into its word tokens, dropping
// empties.
func tokens(s string) []string {
	parts := nonWord.Split(foldCaser.String(s), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
