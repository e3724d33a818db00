package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Parse reconstructs a Result from a rendered skill file so existing skills
// can participate in dedup matching. Problem/solution are not recoverable
// from the prose and come back empty. Returns nil when the document has no
// parseable frontmatter name.
func Parse(content, filename string) *Result {
	fm, ok := parseFrontmatter(content)
	if !ok || fm.Name == "" {
		return nil
	}

	if filename == "" {
		filename = strings.TrimSuffix(FileName(fm.Name), ".md")
	}

	return &Result{
		Name:        fm.Name,
		Filename:    filename,
		Description: fm.Description,
		Steps:       parseNumberedList(sectionBody(content, "## Instructions")),
		Keywords:    parseBulletList(sectionBody(content, "## Trigger Conditions")),
	}
}

func parseFrontmatter(content string) (frontmatter, bool) {
	var fm frontmatter
	if !strings.HasPrefix(content, "---") {
		return fm, false
	}

	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, false
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, false
	}
	return fm, true
}

// sectionBody returns the text between a section header and the next "##"
// header (or end of document).
func sectionBody(content, header string) string {
	idx := strings.Index(content, header)
	if idx < 0 {
		return ""
	}
	body := content[idx+len(header):]
	if next := strings.Index(body, "\n## "); next >= 0 {
		body = body[:next]
	}
	return strings.TrimSpace(body)
}

func parseBulletList(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		if item := strings.TrimSpace(strings.TrimPrefix(line, "- ")); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseNumberedList(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		dot := strings.Index(line, ". ")
		if dot <= 0 || !allDigits(line[:dot]) {
			continue
		}
		if item := strings.TrimSpace(line[dot+2:]); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// LoadDir parses every .md file in dir into Results, keyed by file name
// without extension. A missing directory yields an empty slice; unparseable
// files are skipped.
func LoadDir(dir string) ([]*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read skills directory %s: %w", dir, err)
	}

	var skills []*Result
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name())) //nolint:gosec // G304: dir is the project skills directory
		if err != nil {
			continue
		}
		if s := Parse(string(content), strings.TrimSuffix(e.Name(), ".md")); s != nil {
			s.path = filepath.Join(dir, e.Name())
			skills = append(skills, s)
		}
	}
	return skills, nil
}
