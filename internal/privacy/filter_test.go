package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

func TestStripPrivateTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no tags", in: "Offer at 520k", want: "Offer at 520k"},
		{name: "inline", in: "Offer <private>my max is 540k</private>at 520k", want: "Offer at 520k"},
		{name: "multiline", in: "a <private>\nb\n</private> c", want: "a  c"},
		{name: "two blocks", in: "<private>x</private>keep<private>y</private>", want: "keep"},
		{name: "only private", in: " <private>x</private> ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripPrivateTags(tt.in))
		})
	}
}

func TestFilterTurns(t *testing.T) {
	turns := []models.Turn{
		{Role: models.RoleUser, Text: "<private>ssn 123</private>"},
		{Role: models.RoleUser, Text: "budget <private>540k</private>is flexible"},
		{Role: models.RoleAssistant, Text: "Noted."},
	}

	got := FilterTurns(turns)
	assert.Equal(t, []models.Turn{
		{Role: models.RoleUser, Text: "budget is flexible"},
		{Role: models.RoleAssistant, Text: "Noted."},
	}, got)
	assert.Equal(t, "<private>ssn 123</private>", turns[0].Text)
}
