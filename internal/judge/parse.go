package judge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is a judge's structured reply: a score in [0,1], free-text
// reasoning, and whatever extra dimensions the prompt asked for.
type Verdict struct {
	Score           float64  `json:"score"`
	Reasoning       string   `json:"reasoning"`
	Relevance       *float64 `json:"relevance,omitempty"`
	Accuracy        *float64 `json:"accuracy,omitempty"`
	Helpfulness     *float64 `json:"helpfulness,omitempty"`
	Professionalism *float64 `json:"professionalism,omitempty"`
	Found           []string `json:"found,omitempty"`
	Missing         []string `json:"missing,omitempty"`
}

// ParseVerdict extracts a Verdict from a model reply. Markdown code
// fences around the JSON are tolerated. Replies that still fail to
// decode degrade to a zero score with a diagnostic reasoning string;
// ParseVerdict never fails.
func ParseVerdict(content string) Verdict {
	text := stripFences(content)

	var v Verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Verdict{Score: 0, Reasoning: fmt.Sprintf("Failed to parse: %s", content)}
	}
	return v
}

// stripFences removes a surrounding ```json ... ``` or ``` ... ```
// block, returning the inner text.
func stripFences(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		inner := content[idx+len("```json"):]
		if end := strings.Index(inner, "```"); end >= 0 {
			inner = inner[:end]
		}
		return strings.TrimSpace(inner)
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		inner := content[idx+len("```"):]
		if end := strings.Index(inner, "```"); end >= 0 {
			inner = inner[:end]
		}
		return strings.TrimSpace(inner)
	}
	return strings.TrimSpace(content)
}
