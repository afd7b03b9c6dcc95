package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

const minTranscriptLength = 5

var ErrTranscriptTooShort = fmt.Errorf("transcript must be at least %d characters", minTranscriptLength)

func newPlanCommand(planner service.PlanService, timeout time.Duration) *cobra.Command {
	var (
		dryRun        bool
		providerID    string
		repo          string
		labels        []string
		branchContext string
		verbosity     string
	)

	cmd := &cobra.Command{
		Use:   "plan [transcript]",
		Short: "Plan issues from a transcript and open them",
		Long: `Plan sends the transcript to the selected provider and opens one issue
per planned task. Pass "-" or omit the argument to read the transcript from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := readTranscript(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			target, err := parseRepo(repo)
			if err != nil {
				return err
			}

			if verbosity != "brief" && verbosity != "verbose" {
				return fmt.Errorf("verbosity must be brief or verbose, got %q", verbosity)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			out := cmd.OutOrStdout()

			if dryRun {
				plan, err := planner.DryRunPlan(ctx, service.DryRunParams{
					Transcript:    transcript,
					Provider:      model.ProviderID(providerID),
					Repo:          target,
					BranchContext: branchContext,
				})
				if err != nil {
					return stageError(err)
				}
				printPlan(out, plan)
				return nil
			}

			var defaultLabels []string
			if cmd.Flags().Changed("label") {
				defaultLabels = labels
			}

			result, err := planner.PlanAndOpenIssues(ctx, service.PlanParams{
				Transcript:    transcript,
				Provider:      model.ProviderID(providerID),
				Repo:          target,
				Verbosity:     verbosity,
				DefaultLabels: defaultLabels,
				BranchContext: branchContext,
			})
			if err != nil {
				return stageError(err)
			}
			printResult(out, result, verbosity == "verbose")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the plan without creating issues")
	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "Model provider: openai, claude or gemini (default from DEFAULT_PROVIDER)")
	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Target repository as owner/name (default from DEFAULT_REPO_OWNER/DEFAULT_REPO_NAME)")
	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Label added to every issue, replaces DEFAULT_LABELS (repeatable)")
	cmd.Flags().StringVarP(&branchContext, "branch", "b", "", "Current branch or context passed to the model")
	cmd.Flags().StringVar(&verbosity, "verbosity", "brief", "Output detail: brief or verbose")

	return cmd
}

func readTranscript(in io.Reader, args []string) (string, error) {
	var transcript string
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("reading transcript from stdin: %w", err)
		}
		transcript = string(data)
	} else {
		transcript = args[0]
	}

	transcript = strings.TrimSpace(transcript)
	if utf8.RuneCountInString(transcript) < minTranscriptLength {
		return "", ErrTranscriptTooShort
	}
	return transcript, nil
}

// stageError prefixes the failing pipeline stage so the user knows where to look.
func stageError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timed out: %w", err)
	}
	return fmt.Errorf("%s failed: %w", domain.StageOf(err), err)
}

func printPlan(out io.Writer, plan *model.Plan) {
	fmt.Fprintf(out, "Summary: %s\n", plan.Summary)
	fmt.Fprintf(out, "Rationale: %s\n\n", plan.Rationale)
	for i, issue := range plan.Issues {
		fmt.Fprintf(out, "%d. %s\n", i+1, issue.Title)
		if len(issue.Labels) > 0 {
			fmt.Fprintf(out, "   labels: %s\n", strings.Join(issue.Labels, ", "))
		}
		for _, line := range strings.Split(issue.Body, "\n") {
			fmt.Fprintf(out, "   %s\n", line)
		}
	}
	fmt.Fprintf(out, "\nDry run: %d issue(s) planned, none created.\n", len(plan.Issues))
}

func printResult(out io.Writer, result *model.PlanResult, verbose bool) {
	fmt.Fprintf(out, "Summary: %s\n", result.PlanSummary)
	if verbose {
		fmt.Fprintf(out, "Rationale: %s\n", result.Rationale)
	}
	fmt.Fprintln(out)

	for _, issue := range result.CreatedIssues {
		fmt.Fprintf(out, "  #%d %s\n     %s\n", issue.Number, issue.Title, issue.URL)
	}
	for _, failed := range result.FailedIssues {
		fmt.Fprintf(out, "  failed: %s (%s)\n", failed.Title, failed.Reason)
	}

	fmt.Fprintf(out, "\nCreated %d of %d issue(s).\n", result.TotalIssuesCreated, result.TotalIssuesRequested)
	if verbose {
		fmt.Fprintf(out, "Session: %d\n", result.SessionID)
	}
}
