package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

func newRecentCommand(planner service.PlanService) *cobra.Command {
	var (
		repo  string
		since time.Duration
		limit int
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently created issues in a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := parseRepo(repo)
			if err != nil {
				return err
			}

			params := service.RecentIssuesParams{Repo: target, Limit: limit}
			if since > 0 {
				t := time.Now().Add(-since)
				params.Since = &t
			}

			issues, err := planner.RecentIssues(cmd.Context(), params)
			if err != nil {
				return stageError(err)
			}

			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintln(out, "No issues found.")
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "#%-6d %-7s %s  %s\n",
					issue.Number, issue.State, issue.CreatedAt.Format(time.DateOnly), issue.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Repository as owner/name (default from DEFAULT_REPO_OWNER/DEFAULT_REPO_NAME)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only issues created within this window, e.g. 24h")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of issues (1-100)")

	return cmd
}
