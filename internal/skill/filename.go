package skill

import "strings"

const maxFileNameLen = 50

// FileName sanitizes an LLM-provided filename (or name) into a safe
// kebab-case file name with the .md extension. Only [a-z0-9-] survive;
// over-long names are truncated at a hyphen boundary; an empty result
// falls back to "skill".
func FileName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	slug := collapseHyphens(b.String())
	slug = strings.Trim(slug, "-")

	if len(slug) > maxFileNameLen {
		slug = slug[:maxFileNameLen]
		if idx := strings.LastIndex(slug, "-"); idx > 20 {
			slug = slug[:idx]
		}
		slug = strings.Trim(slug, "-")
	}

	if slug == "" {
		slug = "skill"
	}

	return slug + ".md"
}

func collapseHyphens(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
