// Package conversation reads and writes the per-session conversation logs
// maintained by the logging hooks.
//
// File format (one event per line):
//
//	UserPromptSubmit>{raw prompt text}
//	PostToolUse>{"tool_name":"...","tool_input":{...},"tool_response":{...}}
package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dotcommander/skillforge/internal/app"
)

const (
	userPromptTag = "UserPromptSubmit>"
	toolUseTag    = "PostToolUse>"
)

// ToolUse is one logged tool invocation.
type ToolUse struct {
	ToolName     string          `json:"tool_name"`
	ToolInput    json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse json.RawMessage `json:"tool_response,omitempty"`
}

// Event is one tagged line from the conversation log, in file order.
type Event struct {
	// Kind is "user" or "tool".
	Kind    string
	Prompt  string
	ToolUse *ToolUse
}

// Data is a parsed conversation log.
type Data struct {
	UserPrompts []string
	ToolUses    []ToolUse
	Events      []Event
	Raw         string
}

// ParseFile parses a conversation log. Returns nil (not an error) when the
// file does not exist; malformed tool-use JSON lines are skipped.
func ParseFile(path string) (*Data, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path derived from project dir + session id
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read conversation %s: %w", path, err)
	}

	data := &Data{Raw: string(content)}
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, userPromptTag):
			prompt := strings.TrimPrefix(trimmed, userPromptTag)
			data.UserPrompts = append(data.UserPrompts, prompt)
			data.Events = append(data.Events, Event{Kind: "user", Prompt: prompt})
		case strings.HasPrefix(trimmed, toolUseTag):
			var tu ToolUse
			if err := json.Unmarshal([]byte(strings.TrimPrefix(trimmed, toolUseTag)), &tu); err != nil {
				continue
			}
			data.ToolUses = append(data.ToolUses, tu)
			data.Events = append(data.Events, Event{Kind: "tool", ToolUse: &tu})
		}
	}

	return data, nil
}

// ReadBySessionID loads the conversation log for a session under the given
// project root. Returns nil when no log exists.
func ReadBySessionID(project, sessionID string) (*Data, error) {
	return ParseFile(app.ConversationPath(project, sessionID))
}

// HasEnoughPrompts reports whether the conversation carries at least
// minCount user prompts. Nil data never has enough.
func HasEnoughPrompts(data *Data, minCount int) bool {
	return data != nil && len(data.UserPrompts) >= minCount
}

// RecentText formats the most recent maxEvents events as text for LLM
// analysis. Tool events are summarized to the tool name and up to five
// input keys; full payloads would dwarf the prompts they accompany.
func RecentText(data *Data, maxEvents int) string {
	if data == nil || len(data.Events) == 0 {
		return ""
	}

	events := data.Events
	if maxEvents > 0 && len(events) > maxEvents {
		events = events[len(events)-maxEvents:]
	}

	parts := make([]string, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case "user":
			parts = append(parts, "User: "+ev.Prompt)
		case "tool":
			parts = append(parts, summarizeToolUse(ev.ToolUse))
		}
	}

	return strings.Join(parts, "\n\n")
}

func summarizeToolUse(tu *ToolUse) string {
	name := tu.ToolName
	if name == "" {
		name = "unknown"
	}
	summary := "Tool[" + name + "]"

	var input map[string]json.RawMessage
	if err := json.Unmarshal(tu.ToolInput, &input); err != nil || len(input) == 0 {
		return summary
	}

	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 5 {
		keys = keys[:5]
	}
	return summary + " input: " + strings.Join(keys, ", ")
}
