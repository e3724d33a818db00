// Package redact scrubs credential-shaped substrings from text before it is
// sent to an external LLM endpoint.
package redact

import "regexp"

// Sentinel replaces every matched secret.
const Sentinel = "[REDACTED]"

// patterns is the fixed, ordered list of credential shapes. Order matters:
// provider-specific prefixes are matched before the generic long-blob rule so
// a key is redacted as one token rather than two.
//
//nolint:gochecknoglobals // static compiled pattern set shared by Filter and HasSensitive
var patterns = []*regexp.Regexp{
	// Anthropic-style API keys
	regexp.MustCompile(`sk-ant-api03-[a-zA-Z0-9_-]{20,}`),
	// Generic sk- prefixed keys
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
	// Long alphanumeric blobs that look like keys
	regexp.MustCompile(`\b[a-zA-Z0-9]{32,}\b`),
	// password key-value pairs
	regexp.MustCompile(`(?i)password["']?\s*[:=]\s*["'][^"']+["']`),
	// token key-value pairs
	regexp.MustCompile(`(?i)token["']?\s*[:=]\s*["'][^"']+["']`),
	// Bearer auth headers
	regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9_.-]+`),
	// PEM private key blocks
	regexp.MustCompile(`-----BEGIN\s+[A-Z ]+PRIVATE\s+KEY-----[\s\S]*?-----END\s+[A-Z ]+PRIVATE\s+KEY-----`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36}`),
}

// Filter replaces every credential-shaped substring with the sentinel.
// Idempotent: Filter(Filter(x)) == Filter(x). Empty input yields empty output.
func Filter(text string) string {
	filtered := text
	for _, p := range patterns {
		filtered = p.ReplaceAllString(filtered, Sentinel)
	}
	return filtered
}

// HasSensitive reports whether text contains any credential-shaped substring.
func HasSensitive(text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
