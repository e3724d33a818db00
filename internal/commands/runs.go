package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/skillforge/internal/output"
	"github.com/dotcommander/skillforge/internal/store"
)

// NewRunsCmd creates the runs command, which lists recent learning runs
// from the run-history database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent learning runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetString("project")
			limit, _ := cmd.Flags().GetInt("limit")

			return withDB(func(db *DB) error {
				runs, err := store.ListRuns(cmd.Context(), db, project, limit)
				if err != nil {
					return err
				}

				type row struct {
					ID            int64  `json:"id"`
					SessionID     string `json:"session_id"`
					Project       string `json:"project"`
					Source        string `json:"source"`
					Status        string `json:"status"`
					Reason        string `json:"reason,omitempty"`
					IdeasFound    int    `json:"ideas_found"`
					IdeasPromoted int    `json:"ideas_promoted"`
					SkillsCreated int    `json:"skills_created"`
					SkillsMerged  int    `json:"skills_merged"`
					Failures      int    `json:"failures"`
					StartedAt     string `json:"started_at"`
					FinishedAt    string `json:"finished_at"`
				}
				type resp struct {
					Count int   `json:"count"`
					Runs  []row `json:"runs"`
				}

				r := resp{Count: len(runs), Runs: []row{}}
				for _, run := range runs {
					r.Runs = append(r.Runs, row{
						ID:            run.ID,
						SessionID:     run.SessionID,
						Project:       run.Project,
						Source:        run.Source,
						Status:        run.Status,
						Reason:        run.Reason,
						IdeasFound:    run.IdeasFound,
						IdeasPromoted: run.IdeasPromoted,
						SkillsCreated: run.SkillsCreated,
						SkillsMerged:  run.SkillsMerged,
						Failures:      run.Failures,
						StartedAt:     run.StartedAt.UTC().Format(time.RFC3339),
						FinishedAt:    run.FinishedAt.UTC().Format(time.RFC3339),
					})
				}
				return output.PrintSuccess(r)
			})
		},
	}

	cmd.Flags().String("project", "", "Filter runs to one project root")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return cmd
}
