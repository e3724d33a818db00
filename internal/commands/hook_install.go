package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dotcommander/skillforge/internal/output"
)

const skillforgeCommandFallback = "skillforge"

var (
	skillforgeHooksOnce  sync.Once
	skillforgeHooksCache map[string]hookEntry
)

type hookHandler struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

type hookEntry struct {
	Matcher string        `json:"matcher"`
	Hooks   []hookHandler `json:"hooks"`
}

func claudeSettingsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "settings.json")
}

func projectClaudeSettingsPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".", ".claude", "settings.json")
	}
	return filepath.Join(wd, ".claude", "settings.json")
}

func resolveClaudeSettingsPath(projectScoped bool) string {
	if projectScoped {
		return projectClaudeSettingsPath()
	}
	return claudeSettingsPath()
}

func skillforgeExecutable() string {
	exe, err := os.Executable()
	if err != nil || strings.TrimSpace(exe) == "" {
		return skillforgeCommandFallback
	}
	return exe
}

// buildSkillforgeHookCommand constructs the hook command string for
// settings.json. Subcommands are hardcoded string literals (not user
// input) so concatenation is safe.
func buildSkillforgeHookCommand(subcommand string) string {
	exe := skillforgeExecutable()
	if exe == skillforgeCommandFallback {
		return fmt.Sprintf("skillforge hook %s", subcommand)
	}
	// Quote the executable path so hook commands are robust with spaces.
	return fmt.Sprintf("%q hook %s", exe, subcommand)
}

// skillforgeHooks returns the hook definitions for settings.json.
// Cached via sync.Once since buildSkillforgeHookCommand resolves the
// executable path.
func skillforgeHooks() map[string]hookEntry {
	skillforgeHooksOnce.Do(func() {
		skillforgeHooksCache = buildSkillforgeHooks()
	})
	return skillforgeHooksCache
}

func buildSkillforgeHooks() map[string]hookEntry {
	return map[string]hookEntry{
		"UserPromptSubmit": {
			Matcher: "",
			Hooks: []hookHandler{{
				Type:    "command",
				Command: buildSkillforgeHookCommand("log-prompt"),
				Timeout: 2000,
			}},
		},
		"PostToolUse": {
			Matcher: "",
			Hooks: []hookHandler{{
				Type:    "command",
				Command: buildSkillforgeHookCommand("log-tool-use"),
				Timeout: 2000,
			}},
		},
		"PreToolUse": {
			Matcher: "mcp__web-reader__.*",
			Hooks: []hookHandler{{
				Type:    "command",
				Command: buildSkillforgeHookCommand("cache-check"),
				Timeout: 3000,
			}},
		},
		"SessionEnd": {
			Matcher: "",
			Hooks: []hookHandler{{
				Type:    "command",
				Command: buildSkillforgeHookCommand("session-end"),
				Timeout: 5000,
			}},
		},
	}
}

func skillforgeHookEventNames() []string {
	events := make([]string, 0, len(skillforgeHooks()))
	for name := range skillforgeHooks() {
		events = append(events, name)
	}
	sort.Strings(events)
	return events
}

// readSettings reads and parses a Claude settings.json. Returns an empty
// map if the file doesn't exist.
func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the known settings location
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return settings, nil
}

// writeSettings writes settings back with 2-space indent.
func writeSettings(path string, settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// isSkillforgeHookCommand reports whether a settings.json hook command
// is one of ours. The executable may be named skillforge or be this
// binary under any name (a renamed install, a versioned path), so the
// current executable path is accepted alongside the canonical base name.
func isSkillforgeHookCommand(command string) bool {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return false
	}
	parts := strings.Fields(cmd)
	if len(parts) < 3 {
		return false
	}

	execToken := strings.Trim(parts[0], "\"'")
	if filepath.Base(execToken) != "skillforge" && execToken != skillforgeExecutable() {
		return false
	}
	if parts[1] != "hook" {
		return false
	}

	sub := parts[2]
	return sub == "log-prompt" ||
		sub == "log-tool-use" ||
		sub == "session-end" ||
		sub == "cache-check"
}

// hookEntryEqual compares two parsed hook entries by their JSON
// representation. Sufficient since both sides originate from JSON.
func hookEntryEqual(a, b map[string]any) bool {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}

// installOutcome indicates what happened when upserting a hook entry.
type installOutcome int

const (
	hookInstalled installOutcome = iota
	hookUpdated
	hookSkipped
)

// upsertHookEntry replaces any existing skillforge hook entry or appends
// a new one. Entries belonging to other tools are preserved.
func upsertHookEntry(existing []any, newEntry map[string]any) ([]any, installOutcome) {
	var kept []any
	hadOurs := false
	matching := false

	for _, currentEntry := range existing {
		entryObj, ok := currentEntry.(map[string]any)
		if !ok {
			kept = append(kept, currentEntry)
			continue
		}
		hooks, ok := entryObj["hooks"].([]any)
		if !ok {
			kept = append(kept, currentEntry)
			continue
		}
		ours := false
		for _, h := range hooks {
			hMap, ok := h.(map[string]any)
			if !ok {
				continue
			}
			cmd, _ := hMap["command"].(string)
			if isSkillforgeHookCommand(cmd) {
				ours = true
				break
			}
		}
		if ours {
			hadOurs = true
			if hookEntryEqual(entryObj, newEntry) {
				matching = true
			}
			continue // strip the old entry; re-appended below
		}
		kept = append(kept, currentEntry)
	}

	entries := append(kept, newEntry)
	if matching {
		return entries, hookSkipped
	}
	if hadOurs {
		return entries, hookUpdated
	}
	return entries, hookInstalled
}

func newHookInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install skillforge hooks into Claude Code settings",
		Long: `Registers the logging, cache and learning hooks in settings.json.
Idempotent — safe to run multiple times. Existing hooks are preserved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			type result struct {
				Message   string   `json:"message"`
				Path      string   `json:"path"`
				Installed []string `json:"installed"`
				Updated   []string `json:"updated,omitempty"`
				Skipped   []string `json:"skipped"`
			}

			projectScoped, _ := cmd.Flags().GetBool("project")
			path := resolveClaudeSettingsPath(projectScoped)

			settings, err := readSettings(path)
			if err != nil {
				return cmdErr(err)
			}

			hooksObj, _ := settings["hooks"].(map[string]any)
			if hooksObj == nil {
				hooksObj = map[string]any{}
			}

			var installed, updated, skipped []string
			for eventName, entry := range skillforgeHooks() {
				existing, _ := hooksObj[eventName].([]any)

				entryJSON, _ := json.Marshal(entry)
				var entryMap map[string]any
				_ = json.Unmarshal(entryJSON, &entryMap)

				entries, outcome := upsertHookEntry(existing, entryMap)
				hooksObj[eventName] = entries

				switch outcome {
				case hookInstalled:
					installed = append(installed, eventName)
				case hookUpdated:
					updated = append(updated, eventName)
				case hookSkipped:
					skipped = append(skipped, eventName)
				}
			}

			settings["hooks"] = hooksObj
			if err := writeSettings(path, settings); err != nil {
				return cmdErr(err)
			}

			sort.Strings(installed)
			sort.Strings(updated)
			sort.Strings(skipped)

			resp := result{Path: path, Installed: installed, Updated: updated, Skipped: skipped}
			switch {
			case len(installed) > 0:
				resp.Message = fmt.Sprintf("hooks installed (%s)", strings.Join(installed, ", "))
			case len(updated) > 0:
				resp.Message = fmt.Sprintf("hooks updated (%s)", strings.Join(updated, ", "))
			default:
				resp.Message = "hooks already installed"
			}
			return output.PrintSuccess(resp)
		},
	}

	cmd.Flags().Bool("project", false, "Install hooks in ./.claude/settings.json instead of ~/.claude/settings.json")
	return cmd
}

func newHookUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove skillforge hooks from Claude Code settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			type result struct {
				Path    string   `json:"path"`
				Removed []string `json:"removed"`
			}

			projectScoped, _ := cmd.Flags().GetBool("project")
			path := resolveClaudeSettingsPath(projectScoped)

			settings, err := readSettings(path)
			if err != nil {
				return cmdErr(err)
			}

			hooksObj, _ := settings["hooks"].(map[string]any)
			if hooksObj == nil {
				return output.PrintSuccess(result{Path: path, Removed: []string{}})
			}

			var removed []string
			for _, eventName := range skillforgeHookEventNames() {
				entries, ok := hooksObj[eventName].([]any)
				if !ok {
					continue
				}

				var kept []any
				for _, entry := range entries {
					entryMap, ok := entry.(map[string]any)
					if !ok {
						kept = append(kept, entry)
						continue
					}
					hooks, ok := entryMap["hooks"].([]any)
					if !ok {
						kept = append(kept, entry)
						continue
					}

					ours := false
					for _, h := range hooks {
						hMap, ok := h.(map[string]any)
						if !ok {
							continue
						}
						cmd, _ := hMap["command"].(string)
						if isSkillforgeHookCommand(cmd) {
							ours = true
							break
						}
					}
					if !ours {
						kept = append(kept, entry)
					}
				}

				if len(kept) != len(entries) {
					removed = append(removed, eventName)
				}
				if len(kept) == 0 {
					delete(hooksObj, eventName)
				} else {
					hooksObj[eventName] = kept
				}
			}

			settings["hooks"] = hooksObj
			if err := writeSettings(path, settings); err != nil {
				return cmdErr(err)
			}

			return output.PrintSuccess(result{Path: path, Removed: removed})
		},
	}

	cmd.Flags().Bool("project", false, "Uninstall hooks from ./.claude/settings.json instead of ~/.claude/settings.json")
	return cmd
}
