package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
)

// maxAnswerChars bounds the answer text submitted to the judge,
// applied after serialization.
const maxAnswerChars = 3000

// judgePromptTemplate is the fixed instruction contract for the judge.
// It pins the domain context, the scoring bands, and the things an
// answer must not be penalized for. The strict output-format block is
// appended separately in renderJudgePrompt.
var judgePromptTemplate = template.Must(template.New("judge_prompt").Parse(
	`You are evaluating how relevant an answer is to a user's question about a company's financial statements. Answers may draw on balance sheets, profit and loss reports, ratio analysis, or cash flow data, and may come with tables or charts alongside the text.

Question:
{{.Query}}

Answer:
{{.Answer}}

Score the answer's relevancy to the question on a 0-100 scale:
- 80-100: directly and substantially answers the question with specific, usable figures or findings.
- 40-79: partially relevant; on topic but incomplete, vague, or only loosely tied to what was asked.
- 0-39: largely irrelevant, evasive, empty, or an error message.

Do not penalize the answer for missing charts or images, for plain formatting, or for extra supporting detail beyond what was asked.`))

// renderJudgePrompt fills the contract template and appends the strict
// single-JSON-object reply requirement.
func renderJudgePrompt(query, answer string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Query  string
		Answer string
	}{
		Query:  query,
		Answer: answer,
	}
	if err := judgePromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render judge prompt: %w", err)
	}
	return buf.String() + "\n\nIMPORTANT: You must respond with exactly one JSON object in this format and no other text:\n" +
		`{"score": <integer 0-100>}`, nil
}

// AnswerText flattens an answer of any shape to the text the judge and
// the lexical fallback see. Strings pass through untouched; raw payload
// bytes are used as-is; everything else is serialized to compact JSON,
// with the value's default string form as a last resort. The result is
// truncated to maxAnswerChars after serialization.
func AnswerText(answer any) string {
	var text string
	switch a := answer.(type) {
	case nil:
		text = ""
	case string:
		text = a
	case []byte:
		text = string(a)
	default:
		if encoded, err := json.Marshal(a); err == nil {
			text = string(encoded)
		} else {
			text = fmt.Sprintf("%v", a)
		}
	}
	return truncate(text, maxAnswerChars)
}

// truncate cuts s to at most limit characters without splitting a
// multi-byte rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
