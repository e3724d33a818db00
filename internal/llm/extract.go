package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// Unmarshal pulls a JSON payload out of a model response. Models wrap
// JSON in prose or markdown fences more often than not, so three stages
// are tried in order: direct parse, fenced code block, balanced-bracket
// substring. Returns false when no stage yields valid JSON.
func Unmarshal(content string, v any) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}

	if json.Unmarshal([]byte(content), v) == nil {
		return true
	}

	if m := fencedBlockRe.FindStringSubmatch(content); m != nil {
		if json.Unmarshal([]byte(strings.TrimSpace(m[1])), v) == nil {
			return true
		}
	}

	if sub := bracketedObject(content); sub != "" {
		if json.Unmarshal([]byte(sub), v) == nil {
			return true
		}
	}
	return false
}

// bracketedObject returns the first balanced {...} substring, honoring
// string literals and escapes so braces inside values do not confuse the
// depth count.
func bracketedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
