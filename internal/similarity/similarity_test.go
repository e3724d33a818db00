package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "api debug", "数据库优化", "Fix Build Errors"} {
		require.Equal(t, 1.0, Score(s, s))
	}
}

func TestScoreEmpty(t *testing.T) {
	require.Equal(t, 1.0, Score("", ""))
	require.Equal(t, 0.0, Score("hello", ""))
	require.Equal(t, 0.0, Score("", "hello"))
	// Single characters produce no bigrams, so their empty sets compare
	// equal. Callers comparing free text never see one-rune strings.
	require.Equal(t, 1.0, Score("a", "b"))
}

func TestScoreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"API Debug Config", "API Debug Setup"},
		{"database optimization", "debug configuration"},
		{"重构代码", "重构模块"},
	}
	for _, p := range pairs {
		require.InDelta(t, Score(p[0], p[1]), Score(p[1], p[0]), 1e-12)
	}
}

func TestScoreCaseAndSpaceInsensitive(t *testing.T) {
	require.Equal(t, 1.0, Score("  Hello World ", "hello world"))
}

func TestScoreSimilarStrings(t *testing.T) {
	// Minor rewording keeps the score moderately high.
	assert.Greater(t, Score("API Debug Config", "API Debug Setup"), 0.4)
	assert.Greater(t, Score("API Debug Configuration", "API Debug Config"), 0.65)
	// Unrelated strings score low.
	assert.Less(t, Score("API Debug Config", "Database Optimization"), 0.3)
}

func TestKeywordOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{name: "identical", a: []string{"api", "debug"}, b: []string{"API", "Debug"}, want: 1},
		{name: "subset", a: []string{"api", "debug"}, b: []string{"api", "debug", "setup"}, want: 2.0 / 3.0},
		{name: "disjoint", a: []string{"api"}, b: []string{"db"}, want: 0},
		{name: "empty a", a: nil, b: []string{"api"}, want: 0},
		{name: "empty both", a: nil, b: nil, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, KeywordOverlap(tc.a, tc.b), 1e-12)
		})
	}
}

func TestShouldMerge(t *testing.T) {
	// Name similarity path.
	require.True(t, ShouldMerge(
		"API Debug Configuration", "API Debug Config",
		nil, nil,
		0.6, 0.5,
	))

	// The canonical dedup case: names alone fall short, keywords carry it.
	require.True(t, ShouldMerge(
		"API Debug Config", "API Debug Setup",
		[]string{"API", "debug"}, []string{"API", "debug", "setup"},
		0.6, 0.5,
	))

	// Keyword overlap path despite dissimilar names.
	require.True(t, ShouldMerge(
		"Fixing flaky tests", "Retry harness",
		[]string{"API", "debug"}, []string{"api", "debug", "setup"},
		0.6, 0.5,
	))

	// Neither path.
	require.False(t, ShouldMerge(
		"API Debug Config", "Database Optimization",
		[]string{"api"}, []string{"postgres"},
		0.6, 0.5,
	))
}
