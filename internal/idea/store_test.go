package idea

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{Threshold: 5, TitleSimilarity: 0.65, KeywordOverlap: 0.5}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Prefer table driven tests", want: "prefer-table-driven-tests"},
		{name: "punctuation collapsed", in: "fix!! weird__chars??", want: "fix-weird-chars"},
		{name: "cjk preserved", in: "使用 repository 模式", want: "使用-repository-模式"},
		{name: "empty", in: "   ", want: "idea"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Slug(tc.in))
		})
	}
}

func TestSlugTruncates(t *testing.T) {
	long := "a very long title that keeps going and going and going and going well past fifty characters"
	slug := Slug(long)
	require.LessOrEqual(t, len([]rune(slug)), 50)
	require.NotEmpty(t, slug)
}

func TestUniqueIDDisambiguates(t *testing.T) {
	existing := []*Idea{{ID: "prefer-table-driven-tests"}}

	id := uniqueID("Prefer table-driven tests", existing)
	require.NotEqual(t, "prefer-table-driven-tests", id)
	require.True(t, len(id) > len("prefer-table-driven-tests"))

	// No collision, slug passes through.
	require.Equal(t, "something-else", uniqueID("Something else", existing))
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	project := t.TempDir()
	s := NewStore(project, testOptions())

	idx := s.Load()
	require.Equal(t, Version, idx.Version)
	require.Empty(t, idx.Ideas)

	require.NoError(t, os.MkdirAll(filepath.Dir(s.indexPath()), 0750))
	require.NoError(t, os.WriteFile(s.indexPath(), []byte("{not json"), 0600))

	idx = s.Load()
	require.Equal(t, Version, idx.Version)
	require.Empty(t, idx.Ideas)
}

func TestAddOrUpdateAccumulates(t *testing.T) {
	project := t.TempDir()
	s := NewStore(project, testOptions())

	c := Candidate{
		Title:    "Prefer table-driven tests",
		Category: "repeated-workflows",
		Trigger:  "writing new test files",
		Pattern:  "use a table of cases with t.Run",
		Keywords: []string{"testing", "table-driven"},
	}

	for i := 1; i <= 5; i++ {
		res, err := s.AddOrUpdate(c, "session-1", "evidence")
		require.NoError(t, err)
		assert.Equal(t, i, res.Idea.Count)
		assert.Equal(t, i == 1, res.IsNew)
		assert.Equal(t, i == 5, res.ReachedThreshold, "call %d", i)
	}

	idx := s.Load()
	require.Len(t, idx.Ideas, 1)
	assert.Equal(t, "prefer-table-driven-tests", idx.Ideas[0].ID)
	assert.Equal(t, 5, idx.Ideas[0].Count)
}

func TestAddOrUpdateUnionsKeywords(t *testing.T) {
	project := t.TempDir()
	s := NewStore(project, testOptions())

	first := Candidate{Title: "Prefer table-driven tests", Keywords: []string{"testing"}}
	_, err := s.AddOrUpdate(first, "s1", "e1")
	require.NoError(t, err)

	second := Candidate{Title: "Prefer table driven tests", Keywords: []string{"Testing", "subtests"}}
	res, err := s.AddOrUpdate(second, "s2", "e2")
	require.NoError(t, err)

	assert.False(t, res.IsNew)
	assert.Equal(t, []string{"testing", "subtests"}, res.Idea.Keywords)
}

func TestFindMatchPredicates(t *testing.T) {
	s := NewStore(t.TempDir(), testOptions())
	idx := &Index{Version: Version, Ideas: []*Idea{{
		ID:       "prefer-table-driven-tests",
		Title:    "Prefer table-driven tests",
		Trigger:  "writing new test files",
		Keywords: []string{"testing", "table-driven"},
	}}}

	// Keyword overlap carries a dissimilar title.
	byKeywords := Candidate{Title: "Subtest everything", Keywords: []string{"testing", "table-driven", "go"}}
	require.NotNil(t, s.FindMatch(idx, byKeywords))

	// Trigger similarity as the last resort.
	byTrigger := Candidate{Title: "Subtest everything", Trigger: "writing new test file", Keywords: []string{"go"}}
	require.NotNil(t, s.FindMatch(idx, byTrigger))

	unrelated := Candidate{Title: "Deploy with canaries", Trigger: "rolling out services", Keywords: []string{"deploy"}}
	require.Nil(t, s.FindMatch(idx, unrelated))
}

func TestFindMatchIgnoresEmptyTriggers(t *testing.T) {
	s := NewStore(t.TempDir(), testOptions())
	idx := &Index{Version: Version, Ideas: []*Idea{{
		ID:       "prefer-table-driven-tests",
		Title:    "Prefer table-driven tests",
		Keywords: []string{"testing", "table-driven"},
	}}}

	// Two absent triggers must not count as a match.
	unrelated := Candidate{Title: "Deploy with canaries", Keywords: []string{"deploy"}}
	require.Nil(t, s.FindMatch(idx, unrelated))
}

func TestAddOrUpdateKeepsTriggerlessIdeasApart(t *testing.T) {
	project := t.TempDir()
	s := NewStore(project, testOptions())

	first := Candidate{Title: "Prefer table-driven tests", Keywords: []string{"testing", "table-driven"}}
	res, err := s.AddOrUpdate(first, "s1", "e1")
	require.NoError(t, err)
	assert.True(t, res.IsNew)

	second := Candidate{Title: "Deploy with canaries", Keywords: []string{"deploy", "rollout"}}
	res, err = s.AddOrUpdate(second, "s1", "e2")
	require.NoError(t, err)
	assert.True(t, res.IsNew)
	assert.Equal(t, 1, res.Idea.Count)

	require.Len(t, s.Load().Ideas, 2)
}

func TestReadyAndRemove(t *testing.T) {
	project := t.TempDir()
	s := NewStore(project, Options{Threshold: 2, TitleSimilarity: 0.65, KeywordOverlap: 0.5})

	c := Candidate{Title: "Prefer table-driven tests"}
	_, err := s.AddOrUpdate(c, "s1", "e1")
	require.NoError(t, err)
	require.Empty(t, s.Ready())

	res, err := s.AddOrUpdate(c, "s2", "e2")
	require.NoError(t, err)
	require.True(t, res.ReachedThreshold)

	ready := s.Ready()
	require.Len(t, ready, 1)

	require.NoError(t, s.Remove(ready[0].ID))
	require.Empty(t, s.Ready())

	// Instance files are left on disk after removal.
	instances, err := s.ListInstances(ready[0].ID)
	require.NoError(t, err)
	require.Len(t, instances, 2)
}

func TestListInstancesChronological(t *testing.T) {
	project := t.TempDir()
	s := NewStore(project, testOptions())

	c := Candidate{Title: "Prefer table-driven tests"}
	for _, evidence := range []string{"first", "second", "third"} {
		_, err := s.AddOrUpdate(c, "s1", evidence)
		require.NoError(t, err)
	}

	instances, err := s.ListInstances("prefer-table-driven-tests")
	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.Equal(t, "first", instances[0].Evidence)
	assert.Equal(t, "third", instances[2].Evidence)

	// Missing idea yields no instances, no error.
	none, err := s.ListInstances("does-not-exist")
	require.NoError(t, err)
	require.Nil(t, none)
}
