package idea

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxSlugLen = 50

var cjkTables = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
}

// Slug derives an idea id from its title: lowercased, runs of characters
// outside [a-z0-9] and CJK collapsed to single hyphens, capped at 50 runes.
func Slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsOneOf(cjkTables, r):
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if runes := []rune(slug); len(runes) > maxSlugLen {
		slug = strings.Trim(string(runes[:maxSlugLen]), "-")
	}
	if slug == "" {
		slug = "idea"
	}
	return slug
}

// uniqueID returns the title slug, disambiguated with a short random
// suffix when another idea already claimed it. Differently spelled titles
// can slugify identically; without the suffix the newer idea would shadow
// the older one's instance directory.
func uniqueID(title string, existing []*Idea) string {
	slug := Slug(title)
	taken := false
	for _, i := range existing {
		if i.ID == slug {
			taken = true
			break
		}
	}
	if !taken {
		return slug
	}
	return slug + "-" + uuid.NewString()[:8]
}
