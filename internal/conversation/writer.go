package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotcommander/skillforge/internal/app"
)

// AppendUserPrompt appends a UserPromptSubmit line to the session log,
// creating the conversations directory as needed.
func AppendUserPrompt(project, sessionID, prompt string) error {
	return appendLine(project, sessionID, userPromptTag+prompt)
}

// AppendToolUse appends a PostToolUse line to the session log. The tool log
// is stored as compact JSON so each event stays on one line.
func AppendToolUse(project, sessionID string, tu ToolUse) error {
	payload, err := json.Marshal(tu)
	if err != nil {
		return fmt.Errorf("marshal tool use: %w", err)
	}
	return appendLine(project, sessionID, toolUseTag+string(payload))
}

func appendLine(project, sessionID, line string) error {
	path := app.ConversationPath(project, sessionID)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create conversations directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // G304: path derived from project dir + session id
	if err != nil {
		return fmt.Errorf("open conversation log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append conversation line: %w", err)
	}
	return nil
}
