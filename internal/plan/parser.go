// Package plan recovers a structured plan from free-form planner output.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// DefaultActionTitle is used for actions whose title is missing or blank.
const DefaultActionTitle = "Proposed action"

// maxCandidates bounds how many brace positions are tried per response.
const maxCandidates = 32

// fencedJSONPattern matches a response that ends in a ```json fenced object.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```\\s*$")

// Outcome tags how a Result was produced.
type Outcome string

const (
	OutcomeParsed   Outcome = "parsed"
	OutcomeFallback Outcome = "fallback"
)

// Result is the plan recovered from one planner response.
type Result struct {
	Reply   string
	Actions []models.ProposedTitle
	Outcome Outcome
	// Reason explains a fallback; empty when Outcome is OutcomeParsed.
	Reason string
}

// Fallback reports whether the planner output could not be parsed.
func (r Result) Fallback() bool {
	return r.Outcome == OutcomeFallback
}

// FallbackReply is the reply used when the plan carries no usable text.
func FallbackReply(userMessage string) string {
	return fmt.Sprintf("You said: \"%s\".", userMessage)
}

// ParseFailedReply is the reply used when the planner output is not valid JSON.
func ParseFailedReply(userMessage string) string {
	return FallbackReply(userMessage) + " (Note: plan JSON parse failed; showing fallback.)"
}

// Parse extracts {text, actions} from raw planner output. It never fails:
// malformed output yields a fallback Result with no actions.
func Parse(raw, userMessage string) Result {
	obj, err := decodeObject(raw)
	if err != nil {
		return Result{
			Reply:   ParseFailedReply(userMessage),
			Actions: []models.ProposedTitle{},
			Outcome: OutcomeFallback,
			Reason:  err.Error(),
		}
	}

	reply := FallbackReply(userMessage)
	if text, ok := obj["text"].(string); ok && strings.TrimSpace(text) != "" {
		reply = text
	}

	return Result{
		Reply:   reply,
		Actions: coerceActions(obj["actions"]),
		Outcome: OutcomeParsed,
	}
}

// decodeObject finds the trailing {...} span of raw and strictly decodes it.
// Candidate spans start at each '{' from left to right and run to the final
// '}', so leading commentary (including stray braces) is tolerated.
func decodeObject(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, errors.New("empty planner output")
	}
	if m := fencedJSONPattern.FindStringSubmatch(text); len(m) > 1 {
		text = m[1]
	}

	if !strings.HasSuffix(text, "}") {
		return decodeStrict(text)
	}

	var firstErr error
	tried := 0
	for i := 0; i < len(text) && tried < maxCandidates; i++ {
		if text[i] != '{' {
			continue
		}
		tried++
		obj, err := decodeStrict(text[i:])
		if err == nil {
			return obj, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return decodeStrict(text)
	}
	return nil, firstErr
}

func decodeStrict(s string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode plan: top-level value is %T, not an object", v)
	}
	return obj, nil
}

func coerceActions(v any) []models.ProposedTitle {
	list, ok := v.([]any)
	if !ok {
		return []models.ProposedTitle{}
	}

	out := make([]models.ProposedTitle, 0, len(list))
	for _, item := range list {
		entry, _ := item.(map[string]any)

		title := strings.TrimSpace(stringify(entry["title"]))
		if title == "" {
			title = DefaultActionTitle
		}
		desc := stringify(entry["desc"])
		if desc == "" {
			desc = stringify(entry["description"])
		}
		out = append(out, models.ProposedTitle{Title: title, Description: desc})
	}
	return out
}

// stringify renders scalar JSON values as text; objects, arrays and null are empty.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}
