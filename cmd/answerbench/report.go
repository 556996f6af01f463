package main

import (
	"fmt"
	"strings"

	"github.com/answerbench/answerbench/internal/domain"
)

// renderReport formats one aggregate result as a terminal-friendly
// markdown report: one section per source with its relevancy, latency,
// summary, and canonical table, then a closing comparison line.
func renderReport(result *domain.QueryResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Query: %s\n\n", result.Query)

	for _, r := range result.Results {
		fmt.Fprintf(&b, "## %s (relevancy %d, %d ms)", r.Source, r.Relevancy, r.LatencyMs)
		if r.Failed {
			b.WriteString(" [failed]")
		}
		b.WriteString("\n\n")

		if r.Answer.Summary != "" {
			b.WriteString(r.Answer.Summary)
			b.WriteString("\n\n")
		}
		if r.Answer.Table.WellFormed() {
			b.WriteString(r.Answer.Table.Markdown())
			b.WriteString("\n")
		}
		if len(r.Answer.ChartSpec) > 0 {
			b.WriteString("(chart specification omitted from text report)\n\n")
		}
		if n := len(r.Answer.Images); n > 0 {
			fmt.Fprintf(&b, "(%d image(s) omitted from text report)\n\n", n)
		}
	}

	if best := domain.BestResult(result.Results); best != nil {
		fmt.Fprintf(&b, "Best answer: %s (relevancy %d). Mean relevancy: %.1f.\n",
			best.Source, best.Relevancy, domain.MeanRelevancy(result.Results))
	}
	return b.String()
}
