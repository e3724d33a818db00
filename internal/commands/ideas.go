package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/skillforge/internal/app"
	"github.com/dotcommander/skillforge/internal/idea"
	"github.com/dotcommander/skillforge/internal/output"
)

// NewIdeasCmd creates the ideas command, which reports accumulation
// progress for a project's idea store.
func NewIdeasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Show accumulated ideas and their synthesis progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetString("project")
			if project == "" {
				wd, err := os.Getwd()
				if err != nil {
					return cmdErr(err)
				}
				project = wd
			}

			cfg := app.EffectiveLearning()
			ideas := idea.NewStore(project, idea.Options{
				Threshold:       cfg.SkillThreshold,
				TitleSimilarity: cfg.IdeaSimilarity,
				KeywordOverlap:  cfg.KeywordOverlap,
			})
			idx := ideas.Load()

			type row struct {
				ID        string   `json:"id"`
				Title     string   `json:"title"`
				Category  string   `json:"category"`
				Count     int      `json:"count"`
				Ready     bool     `json:"ready"`
				FirstSeen string   `json:"first_seen"`
				LastSeen  string   `json:"last_seen"`
				Keywords  []string `json:"keywords,omitempty"`
			}
			type resp struct {
				Project   string `json:"project"`
				Threshold int    `json:"threshold"`
				Total     int    `json:"total"`
				Ready     int    `json:"ready"`
				Ideas     []row  `json:"ideas"`
			}

			r := resp{
				Project:   project,
				Threshold: cfg.SkillThreshold,
				Total:     len(idx.Ideas),
				Ideas:     []row{},
			}
			for _, i := range idx.Ideas {
				ready := i.Count >= cfg.SkillThreshold
				if ready {
					r.Ready++
				}
				r.Ideas = append(r.Ideas, row{
					ID:        i.ID,
					Title:     i.Title,
					Category:  i.Category,
					Count:     i.Count,
					Ready:     ready,
					FirstSeen: i.FirstSeen.UTC().Format(time.RFC3339),
					LastSeen:  i.LastSeen.UTC().Format(time.RFC3339),
					Keywords:  i.Keywords,
				})
			}
			return output.PrintSuccess(r)
		},
	}

	cmd.Flags().String("project", "", "Project root (defaults to the current directory)")
	return cmd
}
