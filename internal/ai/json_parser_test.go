package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalstride/stride/internal/types"
)

func TestParseDirectJSON(t *testing.T) {
	result := Parse[[]types.StepProposal](`[{"title": "Draft outline", "detail": "headings", "metric": "5 sections", "duration_min": 30, "why": "clarity"}]`, "test")
	require.True(t, result.Success, result.Error)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Draft outline", result.Data[0].Title)
	require.NotNil(t, result.Data[0].DurationMinutes)
	assert.Equal(t, 30, *result.Data[0].DurationMinutes)
}

func TestParseCodeFenced(t *testing.T) {
	input := "```json\n[{\"title\": \"Collect references\", \"detail\": \"\", \"metric\": \"\", \"why\": \"\"}]\n```"
	result := Parse[[]types.StepProposal](input, "test")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "Collect references", result.Data[0].Title)
}

func TestParseTrailingComma(t *testing.T) {
	input := `{"title": "x", "detail": "y",}`
	result := Parse[types.StepProposal](input, "test")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "x", result.Data.Title)
}

func TestParseEmbeddedInProse(t *testing.T) {
	input := "Here is your plan:\n[{\"title\": \"Run 5km\", \"detail\": \"\", \"metric\": \"\", \"why\": \"\"}]\nGood luck!"
	result := Parse[[]types.StepProposal](input, "test")
	require.True(t, result.Success, result.Error)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Run 5km", result.Data[0].Title)
}

func TestParseWithComments(t *testing.T) {
	input := "{\n  // the title\n  \"title\": \"x\"\n}"
	result := Parse[types.StepProposal](input, "test")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "x", result.Data.Title)
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t "},
		{"prose only", "I could not generate a plan today."},
		{"truncated", `[{"title": "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse[[]types.StepProposal](tt.input, "test")
			assert.False(t, result.Success)
			assert.NotEmpty(t, result.Error)
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdefgh", 3))
}
