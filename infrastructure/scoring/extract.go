package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors distinguishing the judge failure modes for fallback
// accounting. All of them route to the lexical fallback; none escape
// the scorer.
var (
	errEmptyReply      = errors.New("judge reply is empty")
	errUnparsableReply = errors.New("judge reply violates the score contract")
)

// judgeReply is the strict contract shape the judge must produce.
type judgeReply struct {
	Score *float64 `json:"score" validate:"required"`
}

// parseJudgeReply extracts the numeric score from a judge reply,
// tolerating code fences and surrounding prose but nothing structurally
// looser than one JSON object with a finite score field.
func parseJudgeReply(reply string) (int, error) {
	if strings.TrimSpace(reply) == "" {
		return 0, errEmptyReply
	}

	payload := extractJSONObject(reply)
	if payload == "" {
		return 0, fmt.Errorf("%w: no JSON object in %d-char reply", errUnparsableReply, len(reply))
	}

	var parsed judgeReply
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return 0, fmt.Errorf("%w: %v", errUnparsableReply, err)
	}
	if err := validate.Struct(parsed); err != nil {
		return 0, fmt.Errorf("%w: missing score field", errUnparsableReply)
	}
	score := *parsed.Score
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: score is not finite", errUnparsableReply)
	}
	return int(math.Round(score)), nil
}

// extractJSONObject pulls the first JSON object out of a reply that may
// wrap it in markdown code fences or surround it with prose. Returns ""
// when no balanced object exists.
func extractJSONObject(reply string) string {
	reply = strings.TrimSpace(reply)

	if start := strings.Index(reply, "```json"); start != -1 {
		body := reply[start+len("```json"):]
		if end := strings.Index(body, "```"); end != -1 {
			return strings.TrimSpace(body[:end])
		}
	}

	if start := strings.Index(reply, "```"); start != -1 {
		body := reply[start+len("```"):]
		// Drop a language identifier on the fence line, if any.
		if newline := strings.Index(body, "\n"); newline != -1 {
			body = body[newline+1:]
		}
		if end := strings.Index(body, "```"); end != -1 {
			candidate := strings.TrimSpace(body[:end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	start := strings.Index(reply, "{")
	if start == -1 {
		return ""
	}

	// Scan for the matching close brace, ignoring braces inside JSON
	// strings and escaped characters.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(reply); i++ {
		c := reply[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return reply[start : i+1]
				}
			}
		}
	}
	return ""
}
