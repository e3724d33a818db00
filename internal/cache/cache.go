// Package cache serves previously fetched web content back to the host
// instead of letting it re-fetch. Cached pages live as SKILL.md files
// under the project's skills directory, keyed by domain and path; the
// PreToolUse hook consults this package and emits a block payload on a
// hit.
package cache

import (
	"crypto/md5" //nolint:gosec // G401: hash shortens cache keys, not a security boundary
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// refreshKeywords bypass the cache when present in the user's prompt.
// Both English and Chinese phrasings are recognized.
var refreshKeywords = []string{
	"重新", "刷新", "跳过缓存", "强制刷新",
	"force refresh", "reload", "refresh", "skip cache", "bypass cache",
}

// ShouldRefresh reports whether the user asked for fresh content.
func ShouldRefresh(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range refreshKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractDomain normalizes a URL to its bare hostname: lowercased,
// www-stripped, scheme added when missing. Empty string on anything
// unparseable.
func ExtractDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Key derives the cache key for a URL. The bare domain keys the root
// page; any other path gets a slug plus a short path hash so distinct
// pages on one domain cache separately.
func Key(rawURL string) string {
	domain := ExtractDomain(rawURL)
	if domain == "" {
		return ""
	}

	normalized := rawURL
	if !strings.HasPrefix(normalized, "http") {
		normalized = "https://" + normalized
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return domain
	}

	p := u.Path
	if p == "" || p == "/" {
		return domain
	}

	sum := md5.Sum([]byte(p)) //nolint:gosec // G401: key disambiguation only
	return domain + "/" + pathSlug(p) + "-" + hex.EncodeToString(sum[:])[:8]
}

func pathSlug(p string) string {
	p = strings.Trim(p, "/")
	var b strings.Builder
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return slug
}

// Metadata is the frontmatter of a cached page file.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SourceURL   string `yaml:"source_url"`
	CachedAt    string `yaml:"cached_at"`
}

// Entry is a cache hit.
type Entry struct {
	Key     string
	Path    string
	Content string
	Meta    Metadata
}

// Find looks up a cached page for a URL: exact path key first, then the
// bare domain as a fallback. Nil on miss or unreadable file.
func Find(rawURL, skillsDir string) *Entry {
	key := Key(rawURL)
	if key == "" {
		return nil
	}

	if e := load(filepath.Join(skillsDir, key, "SKILL.md"), key); e != nil {
		return e
	}
	if domain := ExtractDomain(rawURL); domain != key {
		return load(filepath.Join(skillsDir, domain, "SKILL.md"), domain)
	}
	return nil
}

func load(path, key string) *Entry {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is under the project skills directory
	if err != nil {
		return nil
	}
	content := string(data)
	return &Entry{
		Key:     key,
		Path:    path,
		Content: content,
		Meta:    parseMetadata(content),
	}
}

func parseMetadata(content string) Metadata {
	var meta Metadata
	if !strings.HasPrefix(content, "---") {
		return meta
	}
	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta
	}
	_ = yaml.Unmarshal([]byte(rest[:end]), &meta)
	return meta
}

// Body returns a cached file's content with the frontmatter stripped.
func Body(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return content
	}
	return strings.TrimSpace(rest[end+len("\n---"):])
}

// BlockMessage renders the substitute content handed back to the host in
// place of a live fetch.
func (e *Entry) BlockMessage() string {
	cachedAt := e.Meta.CachedAt
	if cachedAt == "" {
		cachedAt = "unknown"
	}
	source := e.Meta.SourceURL
	if source == "" {
		source = "N/A"
	}
	return fmt.Sprintf(
		"[Web-Cache] Found cached content for %s (cached at %s)\n\nSource: %s\n\n---\n\n%s\n\n---\n[Note: This content is from local cache. Use \"refresh\" or \"reload\" to fetch fresh content from the website.]",
		e.Key, cachedAt, source, Body(e.Content))
}

// ExtractURL pulls a URL out of tool input, trying the common parameter
// names web tools use.
func ExtractURL(params map[string]any) string {
	for _, field := range []string{"url", "uri", "link", "address", "target"} {
		if v, ok := params[field].(string); ok && v != "" {
			return v
		}
	}
	if args, ok := params["arguments"].(map[string]any); ok {
		if v, ok := args["url"].(string); ok {
			return v
		}
	}
	return ""
}

// IsWebReader reports whether a tool name belongs to the web-reader
// family of fetch tools.
func IsWebReader(toolName string) bool {
	name := strings.ToLower(toolName)
	return strings.Contains(name, "web-reader") ||
		strings.Contains(name, "web_reader") ||
		strings.Contains(name, "webreader")
}
