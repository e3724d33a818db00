package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dotcommander/skillforge/internal/app"
	"github.com/dotcommander/skillforge/internal/cache"
	"github.com/dotcommander/skillforge/internal/conversation"
	"github.com/dotcommander/skillforge/internal/llm"
)

// maxHookStdinBytes caps stdin reads. Hook payloads are small JSON
// objects; 1 MB is generous headroom that prevents unbounded allocation.
const maxHookStdinBytes = 1 << 20

// NewHookCmd creates the hook parent command.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Hook handlers and installers for Claude Code",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newHookInstallCmd())
	cmd.AddCommand(newHookUninstallCmd())

	// Hook handler subcommands — called by the hook system, not users
	// directly. Hidden from help output to reduce command surface noise.
	for _, sub := range []*cobra.Command{
		newHookLogPromptCmd(),
		newHookLogToolUseCmd(),
		newHookSessionEndCmd(),
		newHookCacheCheckCmd(),
	} {
		sub.Hidden = true
		cmd.AddCommand(sub)
	}

	return cmd
}

// hookInput is the JSON Claude Code sends on stdin to hooks.
type hookInput struct {
	CWD           string          `json:"cwd"`
	SessionID     string          `json:"session_id"`
	HookEventName string          `json:"hook_event_name"`
	Prompt        string          `json:"prompt"`
	ToolName      string          `json:"tool_name"`
	ToolInput     json.RawMessage `json:"tool_input"`
	ToolResponse  json.RawMessage `json:"tool_response"`
}

// parseHookInput decodes a hook payload. Malformed or empty input yields
// the zero value; hooks treat that as a no-op.
func parseHookInput(data []byte) hookInput {
	var input hookInput
	if len(data) == 0 {
		return input
	}
	if err := json.Unmarshal(data, &input); err != nil {
		slog.Default().Warn("hook stdin unmarshal failed", "error", err, "bytes", len(data))
	}
	return input
}

func readHookStdin() hookInput {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxHookStdinBytes))
	if err != nil {
		return hookInput{}
	}
	return parseHookInput(data)
}

// resolveProject returns the project root for a hook payload.
func resolveProject(input hookInput) string {
	if input.CWD != "" {
		return input.CWD
	}
	wd, _ := os.Getwd()
	return wd
}

func newHookLogPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "log-prompt",
		Short:         "UserPromptSubmit hook — appends the prompt to the session conversation log",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := readHookStdin()
			if input.Prompt == "" || input.SessionID == "" {
				return nil
			}

			// Hooks must never block Claude Code — errors are swallowed.
			if err := conversation.AppendUserPrompt(resolveProject(input), input.SessionID, input.Prompt); err != nil {
				slog.Default().Warn("log-prompt hook failed", "error", err, "session_id", input.SessionID)
			}
			return nil
		},
	}
}

func newHookLogToolUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "log-tool-use",
		Short:         "PostToolUse hook — appends the tool call to the session conversation log",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := readHookStdin()
			if input.ToolName == "" || input.SessionID == "" {
				return nil
			}

			tu := conversation.ToolUse{
				ToolName:     input.ToolName,
				ToolInput:    input.ToolInput,
				ToolResponse: input.ToolResponse,
			}
			if err := conversation.AppendToolUse(resolveProject(input), input.SessionID, tu); err != nil {
				slog.Default().Warn("log-tool-use hook failed", "error", err, "tool_name", input.ToolName)
			}
			return nil
		},
	}
}

// newHookSessionEndCmd creates the SessionEnd hook: it spawns a detached
// learn-worker and exits immediately so the host never waits on an LLM
// call. The worker's log file and the run-history table are the only
// records of what the worker did.
func newHookSessionEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "session-end",
		Short:         "SessionEnd hook — spawns a detached learning worker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := readHookStdin()
			if input.SessionID == "" {
				return nil
			}
			project := resolveProject(input)

			// No credential means learning is off; don't spawn a worker
			// just to have it skip.
			if !llm.Available() {
				fmt.Println("[skillforge] INFO: " + llm.CredentialEnv + " not set, skipping")
				return nil
			}

			if err := spawnWorker(input.SessionID, project); err != nil {
				slog.Default().Warn("spawn learn-worker failed", "error", err, "session_id", input.SessionID)
				return nil
			}

			fmt.Printf("[skillforge] INFO: Starting async learning for session %s\n", input.SessionID)
			fmt.Printf("[skillforge] INFO: Log file: %s\n", app.LearningLogPath(project, input.SessionID))
			return nil
		},
	}
}

// spawnWorker starts the learn-worker as a detached process. The parent
// performs no further synchronization with the child: no wait, no pipe,
// no signal. Setsid detaches it from the host's process group so the
// worker survives the session's teardown.
func spawnWorker(sessionID, project string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	worker := exec.Command(exe, "learn-worker", "--session", sessionID, "--project", project) //nolint:gosec // G204: exe is our own binary path
	worker.Dir = project
	worker.Stdin = nil
	worker.Stdout = nil
	worker.Stderr = nil
	worker.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := worker.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	return worker.Process.Release()
}

// cacheBlock is the stdout payload that tells the host to substitute
// cached content for the underlying tool call.
type cacheBlock struct {
	Block string `json:"block"`
}

// newHookCacheCheckCmd creates the PreToolUse hook that intercepts
// web-reader fetches when a cached copy of the page exists.
func newHookCacheCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "cache-check",
		Short:         "PreToolUse hook — serves cached web content instead of re-fetching",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := readHookStdin()
			if !cache.IsWebReader(input.ToolName) {
				return nil
			}

			var params map[string]any
			_ = json.Unmarshal(input.ToolInput, &params)
			url := cache.ExtractURL(params)
			if url == "" {
				return nil
			}

			project := resolveProject(input)

			// A refresh request in the user's latest prompt bypasses the
			// cache.
			if data, err := conversation.ReadBySessionID(project, input.SessionID); err == nil && data != nil {
				if n := len(data.UserPrompts); n > 0 && cache.ShouldRefresh(data.UserPrompts[n-1]) {
					return nil
				}
			}

			hit := cache.Find(url, app.SkillsDir(project))
			if hit == nil {
				return nil
			}

			return json.NewEncoder(os.Stdout).Encode(cacheBlock{Block: hit.BlockMessage()})
		},
	}
}
