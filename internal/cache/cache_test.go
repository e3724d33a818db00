package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "https", in: "https://docs.nodejs.org/api/fs.html", want: "docs.nodejs.org"},
		{name: "www stripped", in: "https://www.example.com/path", want: "example.com"},
		{name: "no scheme", in: "example.com/page", want: "example.com"},
		{name: "uppercase host", in: "https://EXAMPLE.com", want: "example.com"},
		{name: "empty", in: "", want: ""},
		{name: "garbage", in: "://not a url", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractDomain(tc.in))
		})
	}
}

func TestKey(t *testing.T) {
	// Root path keys on the bare domain.
	assert.Equal(t, "example.com", Key("https://example.com"))
	assert.Equal(t, "example.com", Key("https://example.com/"))

	// Paths get a slug plus a short hash.
	key := Key("https://docs.nodejs.org/api/fs.html")
	require.True(t, strings.HasPrefix(key, "docs.nodejs.org/api-fs-html-"))

	// Distinct paths on one domain key separately; same path is stable.
	assert.NotEqual(t, Key("https://example.com/a"), Key("https://example.com/b"))
	assert.Equal(t, Key("https://example.com/a"), Key("https://example.com/a"))
}

func TestShouldRefresh(t *testing.T) {
	assert.True(t, ShouldRefresh("please RELOAD that page"))
	assert.True(t, ShouldRefresh("skip cache and fetch again"))
	assert.True(t, ShouldRefresh("强制刷新这个页面"))
	assert.False(t, ShouldRefresh("summarize the page"))
	assert.False(t, ShouldRefresh(""))
}

func writeCached(t *testing.T, skillsDir, key, body string) {
	t.Helper()
	dir := filepath.Join(skillsDir, key)
	require.NoError(t, os.MkdirAll(dir, 0750))
	content := "---\nname: cached page\ndescription: test\nsource_url: https://example.com/a\ncached_at: 2026-08-30\n---\n\n" + body
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0600))
}

func TestFindExactThenDomain(t *testing.T) {
	skillsDir := t.TempDir()
	url := "https://example.com/docs/setup"

	// Miss when nothing is cached.
	require.Nil(t, Find(url, skillsDir))

	// Domain-level cache serves any path on the domain.
	writeCached(t, skillsDir, "example.com", "domain body")
	hit := Find(url, skillsDir)
	require.NotNil(t, hit)
	assert.Equal(t, "example.com", hit.Key)

	// Exact path key wins over the domain fallback.
	writeCached(t, skillsDir, Key(url), "page body")
	hit = Find(url, skillsDir)
	require.NotNil(t, hit)
	assert.Equal(t, Key(url), hit.Key)
	assert.Contains(t, hit.Content, "page body")
}

func TestBlockMessage(t *testing.T) {
	skillsDir := t.TempDir()
	writeCached(t, skillsDir, "example.com", "the cached body")

	hit := Find("https://example.com", skillsDir)
	require.NotNil(t, hit)

	msg := hit.BlockMessage()
	assert.Contains(t, msg, "example.com")
	assert.Contains(t, msg, "cached at 2026-08-30")
	assert.Contains(t, msg, "Source: https://example.com/a")
	assert.Contains(t, msg, "the cached body")
	// Frontmatter stays out of the substituted content.
	assert.NotContains(t, msg, "name: cached page")
}

func TestBody(t *testing.T) {
	assert.Equal(t, "plain", Body("plain"))
	assert.Equal(t, "body", Body("---\nname: x\n---\nbody"))
	assert.Equal(t, "---\nunterminated", Body("---\nunterminated"))
}

func TestExtractURL(t *testing.T) {
	assert.Equal(t, "https://a", ExtractURL(map[string]any{"url": "https://a"}))
	assert.Equal(t, "https://b", ExtractURL(map[string]any{"link": "https://b"}))
	assert.Equal(t, "https://c", ExtractURL(map[string]any{"arguments": map[string]any{"url": "https://c"}}))
	assert.Equal(t, "", ExtractURL(map[string]any{"other": 1}))
	assert.Equal(t, "", ExtractURL(nil))
}

func TestIsWebReader(t *testing.T) {
	assert.True(t, IsWebReader("mcp__web-reader__fetch"))
	assert.True(t, IsWebReader("WebReader"))
	assert.False(t, IsWebReader("Bash"))
}
