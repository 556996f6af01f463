package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/answerbench/answerbench/internal/domain"
)

func TestRenderReport(t *testing.T) {
	result := &domain.QueryResult{
		ID:    "11111111-2222-3333-4444-555555555555",
		Query: "how did revenue develop?",
		Results: []domain.SourceResult{
			{
				Source: "vector-db",
				Answer: domain.AnswerModel{
					OutputType: domain.OutputTypeText,
					Summary:    "Revenue grew four percent year over year.",
					Table: &domain.Table{
						Headers: []string{"quarter", "revenue"},
						Rows:    [][]any{{"Q1", float64(120)}, {"Q2", float64(125)}},
					},
				},
				Relevancy: 91,
				LatencyMs: 412,
			},
			{
				Source: "graph-rag",
				Answer: domain.AnswerModel{
					OutputType: domain.OutputTypeText,
					Summary:    "source returned HTTP 502",
				},
				Relevancy: 34,
				LatencyMs: 87,
				Failed:    true,
			},
		},
	}

	report := renderReport(result)

	assert.Contains(t, report, "# Query: how did revenue develop?")
	assert.Contains(t, report, "## vector-db (relevancy 91, 412 ms)")
	assert.Contains(t, report, "Revenue grew four percent year over year.")
	assert.Contains(t, report, "| quarter | revenue |")
	assert.Contains(t, report, "| Q1 | 120 |")
	assert.Contains(t, report, "## graph-rag (relevancy 34, 87 ms) [failed]")
	assert.Contains(t, report, "Best answer: vector-db (relevancy 91). Mean relevancy: 62.5.")
}

func TestRenderReport_ChartAndImages(t *testing.T) {
	result := &domain.QueryResult{
		Query: "plot revenue",
		Results: []domain.SourceResult{
			{
				Source: "charting",
				Answer: domain.AnswerModel{
					OutputType: domain.OutputTypeGraph,
					ChartSpec:  json.RawMessage(`{"mark": "line"}`),
					Images:     []string{"data:image/png;base64,AAAA", "BBBB"},
				},
				Relevancy: 70,
			},
		},
	}

	report := renderReport(result)

	assert.Contains(t, report, "(chart specification omitted from text report)")
	assert.Contains(t, report, "(2 image(s) omitted from text report)")
	// The raw spec and image bytes never leak into the text report.
	assert.NotContains(t, report, "mark")
	assert.NotContains(t, report, "AAAA")
}

func TestRenderReport_NoResults(t *testing.T) {
	report := renderReport(&domain.QueryResult{Query: "empty"})
	assert.True(t, strings.HasPrefix(report, "# Query: empty"))
	assert.NotContains(t, report, "Best answer")
}
