package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/skillforge/internal/learner"
	"github.com/dotcommander/skillforge/internal/store"
)

// NewLearnWorkerCmd creates the hidden learn-worker command. It is the
// detached child spawned by the session-end hook, so it must never fail
// loudly: the run summary goes to the learning log and the run-history
// table, and the process exits zero regardless of outcome.
func NewLearnWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "learn-worker",
		Short:         "Run one learning pass for a session (spawned by the session-end hook)",
		Hidden:        true,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, _ := cmd.Flags().GetString("session")
			project, _ := cmd.Flags().GetString("project")
			if sessionID == "" || project == "" {
				return nil
			}

			runLearning(cmd.Context(), learner.Params{
				SessionID: sessionID,
				Project:   project,
				Source:    store.SourceHook,
			}, false)
			return nil
		},
	}

	cmd.Flags().String("session", "", "Session ID to learn from")
	cmd.Flags().String("project", "", "Project root the session ran in")
	return cmd
}

// runLearning executes one learning pass and records it in the run
// history. Shared by the detached worker and the manual learn command.
// direct selects the single-session extraction mode over the
// accumulation pipeline.
func runLearning(ctx context.Context, p learner.Params, direct bool) learner.Summary {
	started := time.Now()
	runner := learner.NewRunner(p)
	var summary learner.Summary
	if direct {
		summary = runner.RunDirect(ctx)
	} else {
		summary = runner.Run(ctx)
	}
	finished := time.Now()

	withDBSilent(func(db *DB) error {
		return store.RecordRun(ctx, db, &store.Run{
			SessionID:     p.SessionID,
			Project:       p.Project,
			Source:        p.Source,
			Status:        summary.Status,
			Reason:        summary.Reason,
			IdeasFound:    summary.IdeasFound,
			IdeasPromoted: summary.IdeasPromoted,
			SkillsCreated: summary.SkillsCreated,
			SkillsMerged:  summary.SkillsMerged,
			Failures:      summary.Failures,
			StartedAt:     started,
			FinishedAt:    finished,
		})
	})
	return summary
}
