package idea

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dotcommander/skillforge/internal/app"
	"github.com/dotcommander/skillforge/internal/similarity"
)

const indexFile = "ideas.json"

// Options carries the tunable matching and promotion thresholds.
type Options struct {
	// Threshold is the observation count at which an idea becomes ready
	// for synthesis.
	Threshold int
	// TitleSimilarity is the minimum bigram similarity for a candidate's
	// title (or trigger) to match an existing idea.
	TitleSimilarity float64
	// KeywordOverlap is the minimum keyword-overlap ratio for a match.
	KeywordOverlap float64
}

// Store is the per-project idea repository. All mutating operations run
// under an exclusive advisory lock on the project's ideas directory, so
// concurrent workers for overlapping sessions serialize instead of
// clobbering each other's updates.
type Store struct {
	dir  string
	opts Options
}

// NewStore returns a store rooted at the project's ideas directory.
func NewStore(project string, opts Options) *Store {
	return &Store{dir: app.IdeasDir(project), opts: opts}
}

func (s *Store) indexPath() string {
	return filepath.Join(s.dir, indexFile)
}

func (s *Store) instancesDir(id string) string {
	return filepath.Join(s.dir, "instances", id)
}

// lock acquires an exclusive advisory lock on a .lock file adjacent to
// the index. Blocks until the lock is available. Returns the lock file
// handle; pass to unlock when done.
func (s *Store) lock() (*os.File, error) {
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return nil, fmt.Errorf("create ideas directory: %w", err)
	}
	lockPath := filepath.Join(s.dir, ".lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: lockPath derived from the project root
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	return f, nil
}

func unlock(f *os.File) {
	if f == nil {
		return
	}
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	_ = f.Close()
}

// Load reads the index. A missing or corrupt file yields a fresh empty
// index so a damaged store degrades to "no ideas" instead of wedging
// every future session.
func (s *Store) Load() *Index {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		return NewIndex()
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return NewIndex()
	}
	if idx.Version == "" {
		idx.Version = Version
	}
	if idx.Ideas == nil {
		idx.Ideas = []*Idea{}
	}
	return &idx
}

// Save writes the index back to disk.
func (s *Store) Save(idx *Index) error {
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("create ideas directory: %w", err)
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal idea index: %w", err)
	}
	if err := os.WriteFile(s.indexPath(), data, 0600); err != nil {
		return fmt.Errorf("write idea index: %w", err)
	}
	return nil
}

// FindMatch returns the first idea the candidate matches, or nil. For
// each idea, in order: title similarity, then keyword overlap, then
// trigger similarity. The first satisfying predicate wins; there is no
// global best-match search. Triggers only compare when both sides have
// one; two absent triggers say nothing about the ideas being related.
func (s *Store) FindMatch(idx *Index, c Candidate) *Idea {
	for _, i := range idx.Ideas {
		if similarity.Score(i.Title, c.Title) >= s.opts.TitleSimilarity {
			return i
		}
		if similarity.KeywordOverlap(i.Keywords, c.Keywords) >= s.opts.KeywordOverlap {
			return i
		}
		if i.Trigger != "" && c.Trigger != "" && similarity.Score(i.Trigger, c.Trigger) >= s.opts.TitleSimilarity {
			return i
		}
	}
	return nil
}

// UpdateResult reports what AddOrUpdate did.
type UpdateResult struct {
	Idea             *Idea
	IsNew            bool
	ReachedThreshold bool
}

// AddOrUpdate folds one observation into the store: a matching idea has
// its count incremented, keywords unioned and last_seen refreshed; an
// unmatched candidate becomes a new idea with count 1. Either way one
// instance record is persisted. ReachedThreshold is true when the idea's
// count is at or past the promotion threshold after this update.
func (s *Store) AddOrUpdate(c Candidate, sessionID, evidence string) (UpdateResult, error) {
	lf, err := s.lock()
	if err != nil {
		return UpdateResult{}, err
	}
	defer unlock(lf)

	idx := s.Load()
	now := time.Now().UTC()

	matched := s.FindMatch(idx, c)
	res := UpdateResult{Idea: matched}
	if matched != nil {
		matched.Count++
		matched.Keywords = unionKeywords(matched.Keywords, c.Keywords)
		matched.LastSeen = now
	} else {
		res.Idea = &Idea{
			ID:        uniqueID(c.Title, idx.Ideas),
			Title:     c.Title,
			Category:  c.Category,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
			Trigger:   c.Trigger,
			Pattern:   c.Pattern,
			Keywords:  c.Keywords,
		}
		res.IsNew = true
		idx.Ideas = append(idx.Ideas, res.Idea)
	}
	res.ReachedThreshold = res.Idea.Count >= s.opts.Threshold

	if err := s.writeInstance(res.Idea.ID, Instance{
		SessionID: sessionID,
		Timestamp: now,
		Evidence:  evidence,
	}); err != nil {
		return res, err
	}
	if err := s.Save(idx); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Store) writeInstance(id string, inst Instance) error {
	dir := s.instancesDir(id)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create instances directory: %w", err)
	}
	data, err := json.MarshalIndent(inst, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.json", inst.Timestamp.UnixNano()))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write instance: %w", err)
	}
	return nil
}

// Ready returns every idea whose count has reached the promotion
// threshold.
func (s *Store) Ready() []*Idea {
	var ready []*Idea
	for _, i := range s.Load().Ideas {
		if i.Count >= s.opts.Threshold {
			ready = append(ready, i)
		}
	}
	return ready
}

// Remove deletes an idea from the index. Instance files are left on disk.
func (s *Store) Remove(id string) error {
	lf, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock(lf)

	idx := s.Load()
	kept := idx.Ideas[:0]
	for _, i := range idx.Ideas {
		if i.ID != id {
			kept = append(kept, i)
		}
	}
	idx.Ideas = kept
	return s.Save(idx)
}

// ListInstances reads an idea's instance records in chronological order.
// Unparseable files are skipped; a missing directory yields nil.
func (s *Store) ListInstances(id string) ([]Instance, error) {
	dir := s.instancesDir(id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read instances directory %s: %w", dir, err)
	}

	var instances []Instance
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name())) //nolint:gosec // G304: dir is the project instances directory
		if err != nil {
			continue
		}
		var inst Instance
		if err := json.Unmarshal(data, &inst); err != nil {
			continue
		}
		instances = append(instances, inst)
	}
	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Timestamp.Before(instances[j].Timestamp)
	})
	return instances, nil
}

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
