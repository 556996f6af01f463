package domain

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// OutputType tags how an answer's primary content should be interpreted
// by renderers. Upstream services declare their own tags; anything not
// recognized is passed through untouched.
type OutputType string

const (
	// OutputTypeText marks a plain-text summary. It is the default when
	// an upstream payload declares nothing.
	OutputTypeText OutputType = "text"

	// OutputTypeMarkdown marks a summary that contains markdown,
	// typically a pipe table emitted as a string.
	OutputTypeMarkdown OutputType = "markdown"

	// OutputTypeTable marks an answer whose primary content is tabular.
	OutputTypeTable OutputType = "table"

	// OutputTypeGraph marks an answer carrying a chart specification.
	OutputTypeGraph OutputType = "graph"
)

// Table is the canonical tabular representation shared by every answer
// source. Invariant: every row has exactly len(Headers) cells.
type Table struct {
	// Headers holds the column names in display order.
	Headers []string `json:"headers"`

	// Rows holds the data rows. Cell values keep their decoded JSON
	// types (string, float64, bool, nil, or nested values).
	Rows [][]any `json:"rows"`
}

// AnswerModel is the canonical shape every upstream payload is normalized
// into. All downstream consumers (scoring, rendering, the HTTP API)
// operate on this model and never on raw upstream JSON.
type AnswerModel struct {
	// OutputType declares how the content should be interpreted.
	// Defaults to OutputTypeText.
	OutputType OutputType `json:"output_type"`

	// Summary is the textual answer. Structured upstream summaries are
	// serialized to JSON text; this field is never a raw object.
	Summary string `json:"summary,omitempty"`

	// Table is the canonical table, when the payload carried one.
	Table *Table `json:"table,omitempty"`

	// ChartSpec is an opaque declarative chart specification, passed
	// through byte-for-byte from the upstream payload.
	ChartSpec json.RawMessage `json:"chart_spec,omitempty"`

	// Images holds base64-encoded images in upstream order. Entries are
	// either full data URIs or bare base64; they are never re-encoded.
	Images []string `json:"images,omitempty"`
}

// IsEmpty reports whether normalization produced no usable content.
// Callers fall back to the raw payload text in that case.
func (m AnswerModel) IsEmpty() bool {
	return m.Summary == "" && m.Table == nil && len(m.ChartSpec) == 0 && len(m.Images) == 0
}

// WellFormed reports whether every row has exactly as many cells as
// there are headers.
func (t *Table) WellFormed() bool {
	if t == nil {
		return false
	}
	for _, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return false
		}
	}
	return len(t.Headers) > 0
}

// Markdown renders the table as a markdown pipe table: a header row, a
// separator row, then one line per data row.
func (t *Table) Markdown() string {
	if t == nil || len(t.Headers) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(t.Headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(t.Headers)) + "\n")
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = FormatCell(cell)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// FormatCell converts a decoded JSON cell value to its display string.
// Numbers render without a trailing ".0"; nested values render as JSON.
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		if b, err := json.Marshal(c); err == nil {
			return string(b)
		}
		return ""
	}
}

// IsDataURI reports whether an image entry is a full data URI rather
// than bare base64. Renderers use this to decide whether a media-type
// prefix must be added; the image bytes themselves are never touched.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

var numericCellPattern = regexp.MustCompile(`^-?\d[\d,.]*%?$`)

// IsNumericCell reports whether a cell's display string looks numeric,
// for right-alignment decisions. The test is locale-naive: digits with
// comma or period separators and an optional trailing percent sign.
// Currency symbols do not count as numeric.
func IsNumericCell(s string) bool {
	return numericCellPattern.MatchString(strings.TrimSpace(s))
}
