// Package normalizer reconciles the divergent JSON shapes produced by
// uncoordinated upstream answer services into the canonical
// domain.AnswerModel.
//
// Upstream payloads disagree on almost everything: tables arrive as
// 2D arrays, as arrays of keyed rows, as column lists with sample rows,
// or as markdown strings; summaries may be plain text or structured
// objects; the whole payload may be nested one level under a raw_output
// wrapper. Normalization is a single pure pass over the raw bytes with
// an explicit, ordered list of shape extractors so the resolution
// precedence stays auditable. It is total (malformed input yields an
// empty model, never an error), deterministic, and idempotent: feeding
// a marshaled canonical model back through Normalize reproduces it.
package normalizer

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/answerbench/answerbench/internal/domain"
)

// Normalize maps one raw upstream payload onto the canonical model.
// Absent or uninterpretable fields are simply omitted from the result;
// later resolution steps never overwrite a field set by an earlier one,
// except that an explicit output_type declaration wins over an inferred
// one.
func Normalize(raw []byte) domain.AnswerModel {
	model := domain.AnswerModel{OutputType: domain.OutputTypeText}
	if !gjson.ValidBytes(raw) {
		return model
	}

	doc := gjson.ParseBytes(raw)
	if doc.Type == gjson.String {
		model.Summary = doc.String()
		return model
	}
	if !doc.IsObject() {
		return model
	}

	summary := firstField(doc, "summary", "answer")
	model.Table = extractTable(doc)

	markdownInferred := false
	if summary.Exists() {
		model.Summary = summaryText(summary)
	} else if md := firstField(doc, "table"); md.Type == gjson.String && strings.Contains(md.String(), "|") {
		// A pipe in a string-valued table field signals markdown-table
		// content; it becomes the summary rather than a structured table.
		model.Summary = md.String()
		markdownInferred = true
	}

	if spec := firstField(doc, "chart_spec", "vega_spec"); spec.Exists() {
		model.ChartSpec = json.RawMessage(spec.Raw)
	}
	if imgs := firstField(doc, "images", "image"); imgs.Exists() {
		model.Images = imageList(imgs)
	}

	if declared := firstField(doc, "output_type"); declared.Type == gjson.String && declared.String() != "" {
		model.OutputType = domain.OutputType(declared.String())
	} else if markdownInferred {
		model.OutputType = domain.OutputTypeMarkdown
	}
	return model
}

// firstField returns the first present, non-null field among the given
// names, probing the payload directly and then one level under the
// raw_output wrapper. Empty-string values count as absent so that
// placeholder fields do not shadow real content elsewhere.
func firstField(doc gjson.Result, names ...string) gjson.Result {
	scopes := []gjson.Result{doc}
	if wrapper := doc.Get("raw_output"); wrapper.IsObject() {
		scopes = append(scopes, wrapper)
	}
	for _, scope := range scopes {
		for _, name := range names {
			v := scope.Get(name)
			if !v.Exists() || v.Type == gjson.Null {
				continue
			}
			if v.Type == gjson.String && v.String() == "" {
				continue
			}
			return v
		}
	}
	return gjson.Result{}
}

// summaryText flattens a summary value to a plain string. Structured
// values become their JSON text so the canonical model never carries a
// raw object in the summary slot.
func summaryText(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	return strings.TrimSpace(v.Raw)
}

// tableExtractor attempts to build a canonical table from one payload
// scope. Extractors report ok=false when the shape does not apply so
// the next candidate can be tried.
type tableExtractor func(scope gjson.Result) (*domain.Table, bool)

// tableExtractors is the ordered candidate list; the first extractor
// producing a non-empty table wins. Order encodes precedence: explicit
// header/row pairs beat column lists, which beat positional and keyed
// row arrays, which beat nested containers. New upstream shapes get a
// new entry here rather than a new conditional branch.
var tableExtractors = []tableExtractor{
	explicitHeaderRows,
	columnsWithSampleRows,
	columnsWithRows,
	tableAsRowArray,
	tableAsContainer,
}

// extractTable runs the candidate chain against the payload and then
// against its raw_output wrapper, returning the first table found.
func extractTable(doc gjson.Result) *domain.Table {
	scopes := []gjson.Result{doc}
	if wrapper := doc.Get("raw_output"); wrapper.IsObject() {
		scopes = append(scopes, wrapper)
	}
	for _, scope := range scopes {
		for _, extract := range tableExtractors {
			if table, ok := extract(scope); ok {
				return table
			}
		}
	}
	return nil
}

// explicitHeaderRows handles the already-canonical shape: a headers
// array paired with a rows array, either at the scope's top level or
// inside a table object.
func explicitHeaderRows(scope gjson.Result) (*domain.Table, bool) {
	if table, ok := headerRowPair(scope.Get("headers"), scope.Get("rows")); ok {
		return table, true
	}
	if tf := scope.Get("table"); tf.IsObject() {
		return headerRowPair(tf.Get("headers"), tf.Get("rows"))
	}
	return nil, false
}

// columnsWithSampleRows handles {columns: [...], sample_rows: [...]}.
func columnsWithSampleRows(scope gjson.Result) (*domain.Table, bool) {
	return projectColumns(scope.Get("columns"), scope.Get("sample_rows"))
}

// columnsWithRows handles {columns: [...], rows: [...]}, a shape one
// upstream report pipeline emits.
func columnsWithRows(scope gjson.Result) (*domain.Table, bool) {
	return projectColumns(scope.Get("columns"), scope.Get("rows"))
}

// tableAsRowArray handles a table field holding a bare row array:
// either a leading header row followed by data rows, or keyed-mapping
// rows whose first row supplies the headers.
func tableAsRowArray(scope gjson.Result) (*domain.Table, bool) {
	tf := scope.Get("table")
	if !tf.IsArray() {
		return nil, false
	}
	return rowArrayTable(tf)
}

// tableAsContainer handles a table field that is itself a wrapper
// object carrying a nested sample_rows or rows array; construction is
// retried against the nested field, using the container's own column
// list when present.
func tableAsContainer(scope gjson.Result) (*domain.Table, bool) {
	tf := scope.Get("table")
	if !tf.IsObject() {
		return nil, false
	}
	for _, key := range []string{"sample_rows", "rows"} {
		nested := tf.Get(key)
		if !nested.IsArray() {
			continue
		}
		columns := tf.Get("columns")
		if !columns.IsArray() {
			columns = scope.Get("columns")
		}
		if table, ok := projectColumns(columns, nested); ok {
			return table, true
		}
		if table, ok := rowArrayTable(nested); ok {
			return table, true
		}
	}
	return nil, false
}

// headerRowPair builds a table from explicit headers and positional
// rows. Ragged rows are dropped rather than padded; a pair yielding no
// surviving rows does not count as a match.
func headerRowPair(headers, rows gjson.Result) (*domain.Table, bool) {
	if !headers.IsArray() || !rows.IsArray() {
		return nil, false
	}
	names := stringValues(headers)
	if len(names) == 0 {
		return nil, false
	}
	var out [][]any
	rows.ForEach(func(_, row gjson.Result) bool {
		if cells, ok := cellValues(row); ok && len(cells) == len(names) {
			out = append(out, cells)
		}
		return true
	})
	if len(out) == 0 {
		return nil, false
	}
	return &domain.Table{Headers: names, Rows: out}, true
}

// projectColumns builds a table from a column list plus a row array.
// List rows pair with the columns positionally; keyed-mapping rows have
// each column name projected out in column order, with absent keys
// becoming nil cells.
func projectColumns(columns, rows gjson.Result) (*domain.Table, bool) {
	if !columns.IsArray() || !rows.IsArray() {
		return nil, false
	}
	names := stringValues(columns)
	if len(names) == 0 {
		return nil, false
	}
	var out [][]any
	rows.ForEach(func(_, row gjson.Result) bool {
		switch {
		case row.IsArray():
			if cells, ok := cellValues(row); ok && len(cells) == len(names) {
				out = append(out, cells)
			}
		case row.IsObject():
			cells := make([]any, len(names))
			for i, name := range names {
				cells[i] = row.Get(escapeKey(name)).Value()
			}
			out = append(out, cells)
		}
		return true
	})
	if len(out) == 0 {
		return nil, false
	}
	return &domain.Table{Headers: names, Rows: out}, true
}

// rowArrayTable builds a table from a bare row array. A leading array
// row becomes the headers with the remainder as data; keyed-mapping
// rows take their headers from the first row's keys in document order.
func rowArrayTable(rows gjson.Result) (*domain.Table, bool) {
	items := rows.Array()
	if len(items) == 0 {
		return nil, false
	}
	first := items[0]
	switch {
	case first.IsArray():
		names := stringValues(first)
		if len(names) == 0 {
			return nil, false
		}
		var out [][]any
		for _, row := range items[1:] {
			if cells, ok := cellValues(row); ok && len(cells) == len(names) {
				out = append(out, cells)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return &domain.Table{Headers: names, Rows: out}, true
	case first.IsObject():
		var names []string
		first.ForEach(func(key, _ gjson.Result) bool {
			names = append(names, key.String())
			return true
		})
		if len(names) == 0 {
			return nil, false
		}
		var out [][]any
		for _, row := range items {
			if !row.IsObject() {
				continue
			}
			cells := make([]any, len(names))
			for i, name := range names {
				cells[i] = row.Get(escapeKey(name)).Value()
			}
			out = append(out, cells)
		}
		if len(out) == 0 {
			return nil, false
		}
		return &domain.Table{Headers: names, Rows: out}, true
	}
	return nil, false
}

// imageList flattens the image field to a slice: a bare string becomes
// a one-element list, an array keeps its order. Entries are copied
// untouched, never re-encoded; data-URI and bare-base64 entries stay
// distinguishable by prefix.
func imageList(v gjson.Result) []string {
	if v.Type == gjson.String {
		return []string{v.String()}
	}
	if !v.IsArray() {
		return nil
	}
	var images []string
	v.ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.String && item.String() != "" {
			images = append(images, item.String())
		}
		return true
	})
	return images
}

// stringValues converts an array result to its display strings.
func stringValues(arr gjson.Result) []string {
	var out []string
	arr.ForEach(func(_, item gjson.Result) bool {
		out = append(out, item.String())
		return true
	})
	return out
}

// cellValues decodes an array row into cell values, preserving JSON
// types.
func cellValues(row gjson.Result) ([]any, bool) {
	if !row.IsArray() {
		return nil, false
	}
	cells, ok := row.Value().([]any)
	if !ok {
		return nil, false
	}
	return cells, true
}

var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

// escapeKey neutralizes gjson path syntax inside a literal column name
// so headers like "Q1.2024" address the right field.
func escapeKey(key string) string {
	return keyEscaper.Replace(key)
}
