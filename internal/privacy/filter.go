// Package privacy removes user-marked private text before chat turns leave
// the request path.
package privacy

import (
	"regexp"
	"strings"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// privateTagRegex matches <private>...</private> blocks (non-greedy, dotall).
var privateTagRegex = regexp.MustCompile(`(?s)<private>.*?</private>`)

// StripPrivateTags removes all <private>...</private> blocks from content.
func StripPrivateTags(content string) string {
	return strings.TrimSpace(privateTagRegex.ReplaceAllString(content, ""))
}

// HasOnlyPrivateContent reports whether nothing is left after stripping.
func HasOnlyPrivateContent(content string) bool {
	return StripPrivateTags(content) == ""
}

// FilterTurns returns copies of turns with private blocks stripped. Turns
// that were entirely private are dropped.
func FilterTurns(turns []models.Turn) []models.Turn {
	out := make([]models.Turn, 0, len(turns))
	for _, t := range turns {
		if !strings.Contains(t.Text, "<private>") {
			out = append(out, t)
			continue
		}
		if HasOnlyPrivateContent(t.Text) {
			continue
		}
		t.Text = StripPrivateTags(t.Text)
		out = append(out, t)
	}
	return out
}
