// Package skill renders, validates, and deduplicates the Markdown skill
// files written under <project>/.claude/skills/learn.
package skill

import (
	"fmt"
	"strings"
)

// Result is a synthesized skill before it is rendered to disk.
type Result struct {
	Name        string   `json:"name"`
	Filename    string   `json:"filename"`
	Description string   `json:"description"`
	Problem     string   `json:"problem"`
	Solution    string   `json:"solution"`
	Steps       []string `json:"steps"`
	Keywords    []string `json:"keywords"`

	// path is the file this result was loaded from, when it came from
	// disk. A merge writes back to it so files whose names are not
	// already slugs are updated in place instead of duplicated.
	path string
}

// requiredSections are the four headers every valid skill file carries,
// in render order.
//
//nolint:gochecknoglobals // static section list shared by Render and Validate
var requiredSections = []string{
	"## Purpose",
	"## Trigger Conditions",
	"## Instructions",
	"## Examples",
}

// Render produces the complete Markdown document for a result:
// YAML frontmatter, a title, then the four fixed sections.
func Render(r *Result) string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "name: %s\n", escapeYAML(r.Name))
	fmt.Fprintf(&b, "description: %s\n", escapeYAML(r.Description))
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# Skill: %s\n\n", r.Name)

	b.WriteString("## Purpose\n")
	fmt.Fprintf(&b, "When the user runs into %s, %s.\n\n", r.Problem, r.Solution)

	b.WriteString("## Trigger Conditions\n")
	b.WriteString("This skill triggers when the user mentions:\n")
	for _, kw := range r.Keywords {
		fmt.Fprintf(&b, "- %s\n", kw)
	}
	b.WriteString("\n")

	b.WriteString("## Instructions\n")
	for i, step := range r.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\n")

	b.WriteString("## Examples\n")
	example := "a related question"
	if len(r.Keywords) > 0 {
		example = r.Keywords[0]
	}
	fmt.Fprintf(&b, "Example 1: user says %q -> walk through the instructions step by step\n", example)
	fmt.Fprintf(&b, "Example 2: user describes %q -> apply: %s\n", r.Problem, r.Solution)

	return b.String()
}

// escapeYAML quotes a scalar when it contains characters that would change
// its YAML meaning.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, `:#"'`) {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

// Validate checks document shape only: frontmatter first, all four section
// headers present. It does not judge content.
func Validate(content string) bool {
	if !strings.HasPrefix(content, "---") {
		return false
	}
	for _, section := range requiredSections {
		if !strings.Contains(content, section) {
			return false
		}
	}
	return true
}
