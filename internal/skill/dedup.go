package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dotcommander/skillforge/internal/similarity"
)

// stepDupThreshold suppresses near-duplicate steps when merging.
const stepDupThreshold = 0.8

// MergeOptions carries the tunable dedup thresholds.
type MergeOptions struct {
	// NameThreshold is the minimum name similarity for two skills to merge.
	NameThreshold float64
	// KeywordThreshold is the minimum keyword-overlap ratio.
	KeywordThreshold float64
}

// ShouldMerge reports whether a new result should be folded into an
// existing skill rather than written as a new file.
func ShouldMerge(existing, candidate *Result, opts MergeOptions) bool {
	return similarity.ShouldMerge(
		existing.Name, candidate.Name,
		existing.Keywords, candidate.Keywords,
		opts.NameThreshold, opts.KeywordThreshold,
	)
}

// Merge folds a new result into an existing skill. Steps are unioned with
// near-duplicates suppressed, keywords are set-unioned, and for the free
// text fields the longer string wins. The existing name and filename are
// kept so the merged skill overwrites the file it came from.
func Merge(existing, candidate *Result) *Result {
	merged := &Result{
		Name:        existing.Name,
		Filename:    existing.Filename,
		Description: longer(existing.Description, candidate.Description),
		Problem:     longer(existing.Problem, candidate.Problem),
		Solution:    longer(existing.Solution, candidate.Solution),
		path:        existing.path,
	}
	if merged.Filename == "" {
		merged.Filename = candidate.Filename
	}

	merged.Steps = append(merged.Steps, existing.Steps...)
	for _, step := range candidate.Steps {
		dup := false
		for _, have := range merged.Steps {
			if similarity.Score(have, step) > stepDupThreshold {
				dup = true
				break
			}
		}
		if !dup {
			merged.Steps = append(merged.Steps, step)
		}
	}

	merged.Keywords = unionKeywords(existing.Keywords, candidate.Keywords)
	return merged
}

func longer(a, b string) string {
	if len(b) > len(a) {
		return b
	}
	return a
}

// unionKeywords unions case-insensitively, keeping first-seen spelling and
// order; newly contributed keywords are sorted for deterministic output.
func unionKeywords(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, kw := range a {
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}

	var added []string
	for _, kw := range b {
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		added = append(added, kw)
	}
	sort.Strings(added)
	return append(out, added...)
}

// WriteOutcome reports what WriteWithDedup did.
type WriteOutcome struct {
	Path   string `json:"path"`
	Action string `json:"action"` // "created" or "updated"
	Merged bool   `json:"merged"`
}

// Write renders the result and writes it to dir, creating the directory as
// needed. A result loaded from disk overwrites its own file; otherwise the
// file name is derived from the result's filename (or name).
func Write(dir string, r *Result) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create skills directory: %w", err)
	}

	path := r.path
	if path == "" {
		name := r.Filename
		if name == "" {
			name = r.Name
		}
		path = filepath.Join(dir, FileName(name))
	}

	if err := os.WriteFile(path, []byte(Render(r)), 0600); err != nil {
		return "", fmt.Errorf("write skill file: %w", err)
	}
	return path, nil
}

// WriteWithDedup writes a result into dir, first checking every existing
// skill for a merge candidate. The first sufficiently similar skill absorbs
// the new result and its file is overwritten in place; otherwise a new file
// is created. Overwrites are whole-file replaces; concurrent writers race
// (callers hold the per-project lock).
func WriteWithDedup(dir string, r *Result, dedup bool, opts MergeOptions) (WriteOutcome, error) {
	if dedup {
		existing, err := LoadDir(dir)
		if err != nil {
			return WriteOutcome{}, err
		}
		for _, have := range existing {
			if ShouldMerge(have, r, opts) {
				merged := Merge(have, r)
				path, err := Write(dir, merged)
				if err != nil {
					return WriteOutcome{}, err
				}
				return WriteOutcome{Path: path, Action: "updated", Merged: true}, nil
			}
		}
	}

	path, err := Write(dir, r)
	if err != nil {
		return WriteOutcome{}, err
	}
	return WriteOutcome{Path: path, Action: "created", Merged: false}, nil
}

// DefaultResult builds the deterministic fallback skill used when LLM
// synthesis fails: the accumulated idea metadata becomes the skill verbatim.
func DefaultResult(title, id, trigger, pattern string, keywords []string) *Result {
	problem := trigger
	if problem == "" {
		problem = title
	}
	solution := pattern
	if solution == "" {
		solution = "apply the practice that worked in past sessions"
	}
	return &Result{
		Name:        title,
		Filename:    id,
		Description: title + " - distilled from repeated sessions",
		Problem:     problem,
		Solution:    solution,
		Steps: []string{
			"Recognize the trigger scenario",
			"Apply the proven pattern",
			"Verify the result",
		},
		Keywords: keywords,
	}
}
