package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/skillforge/internal/learner"
	"github.com/dotcommander/skillforge/internal/llm"
	"github.com/dotcommander/skillforge/internal/output"
	"github.com/dotcommander/skillforge/internal/store"
)

// NewLearnCmd creates the learn command: a synchronous, on-demand
// learning pass over a recorded session. Unlike the session-end hook it
// runs in the foreground and prints the summary.
func NewLearnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Run a learning pass over a session's conversation log",
		Long: `Analyzes a session's conversation log for reusable ideas, accumulates
them across sessions, and synthesizes skill files from ideas seen often
enough. Requires ` + llm.CredentialEnv + ` to be set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, _ := cmd.Flags().GetString("session")
			project, _ := cmd.Flags().GetString("project")
			direct, _ := cmd.Flags().GetBool("direct")
			if project == "" {
				wd, err := os.Getwd()
				if err != nil {
					return cmdErr(err)
				}
				project = wd
			}

			summary := runLearning(cmd.Context(), learner.Params{
				SessionID: sessionID,
				Project:   project,
				Source:    store.SourceManual,
			}, direct)

			type resp struct {
				Status        string `json:"status"`
				Reason        string `json:"reason,omitempty"`
				IdeasFound    int    `json:"ideas_found"`
				IdeasNew      int    `json:"ideas_new"`
				IdeasPromoted int    `json:"ideas_promoted"`
				SkillsCreated int    `json:"skills_created"`
				SkillsMerged  int    `json:"skills_merged"`
				Failures      int    `json:"failures"`
			}
			return output.PrintSuccess(resp{
				Status:        summary.Status,
				Reason:        summary.Reason,
				IdeasFound:    summary.IdeasFound,
				IdeasNew:      summary.IdeasNew,
				IdeasPromoted: summary.IdeasPromoted,
				SkillsCreated: summary.SkillsCreated,
				SkillsMerged:  summary.SkillsMerged,
				Failures:      summary.Failures,
			})
		},
	}

	cmd.Flags().String("session", "", "Session ID to learn from")
	cmd.Flags().String("project", "", "Project root (defaults to the current directory)")
	cmd.Flags().Bool("direct", false, "Extract skills from this session directly, skipping idea accumulation")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
