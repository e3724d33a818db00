// Package similarity implements the character-bigram Jaccard heuristic used
// to match ideas across sessions and to decide whether two skills merge.
//
// The exact algorithm (bigram Jaccard, not edit distance or embeddings) is
// load-bearing: accumulation thresholds were tuned against it, and it works
// equally well for CJK and Latin text.
package similarity

import "strings"

// Score returns the bigram Jaccard similarity of two strings in [0,1].
// Symmetric; Score(s, s) == 1; Score("", "") == 1; Score(s, "") == 0 for
// non-empty s.
func Score(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if s1 == s2 {
		return 1
	}

	b1 := bigrams(s1)
	b2 := bigrams(s2)

	if len(b1) == 0 && len(b2) == 0 {
		return 1
	}
	if len(b1) == 0 || len(b2) == 0 {
		return 0
	}

	intersection := 0
	for g := range b1 {
		if _, ok := b2[g]; ok {
			intersection++
		}
	}

	union := len(b1) + len(b2) - intersection
	return float64(intersection) / float64(union)
}

// bigrams returns the set of overlapping two-rune substrings.
func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{}, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}

// KeywordOverlap returns |intersection| / max(|a|, |b|) of the two keyword
// sets, compared case-insensitively. Zero when either set is empty.
func KeywordOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	s1 := keywordSet(a)
	s2 := keywordSet(b)

	overlap := 0
	for kw := range s1 {
		if _, ok := s2[kw]; ok {
			overlap++
		}
	}

	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	return float64(overlap) / float64(maxLen)
}

func keywordSet(kws []string) map[string]struct{} {
	set := make(map[string]struct{}, len(kws))
	for _, kw := range kws {
		set[strings.ToLower(kw)] = struct{}{}
	}
	return set
}

// ShouldMerge reports whether two named, keyword-tagged things are close
// enough to fold together: name similarity at or above nameThreshold, or
// keyword overlap at or above keywordThreshold.
func ShouldMerge(nameA, nameB string, keywordsA, keywordsB []string, nameThreshold, keywordThreshold float64) bool {
	if Score(nameA, nameB) >= nameThreshold {
		return true
	}
	return KeywordOverlap(keywordsA, keywordsB) >= keywordThreshold
}
