package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

func TestUnmarshalDirect(t *testing.T) {
	var p payload
	require.True(t, Unmarshal(`{"name": "x", "steps": ["a"]}`, &p))
	assert.Equal(t, "x", p.Name)
}

func TestUnmarshalFencedBlock(t *testing.T) {
	content := "Here is the skill you asked for:\n```json\n{\"name\": \"x\", \"steps\": [\"a\", \"b\"]}\n```\nLet me know if you need changes."
	var p payload
	require.True(t, Unmarshal(content, &p))
	assert.Equal(t, []string{"a", "b"}, p.Steps)
}

func TestUnmarshalBareFence(t *testing.T) {
	content := "```\n{\"name\": \"x\", \"steps\": [\"a\"]}\n```"
	var p payload
	require.True(t, Unmarshal(content, &p))
	assert.Equal(t, "x", p.Name)
}

func TestUnmarshalBracketMatch(t *testing.T) {
	content := `Sure! The result is {"name": "x", "steps": ["a"]} as requested.`
	var p payload
	require.True(t, Unmarshal(content, &p))
	assert.Equal(t, "x", p.Name)
}

func TestUnmarshalBracesInsideStrings(t *testing.T) {
	content := `prefix {"name": "curly {not a brace}", "steps": ["a"]} suffix`
	var p payload
	require.True(t, Unmarshal(content, &p))
	assert.Equal(t, "curly {not a brace}", p.Name)
}

func TestUnmarshalFailures(t *testing.T) {
	var p payload
	assert.False(t, Unmarshal("", &p))
	assert.False(t, Unmarshal("no json here at all", &p))
	assert.False(t, Unmarshal("{unterminated", &p))
}
