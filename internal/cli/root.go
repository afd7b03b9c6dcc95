// Package cli provides the voiceplan command-line interface.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

// NewRootCommand creates the root command. planner is used by every subcommand.
func NewRootCommand(planner service.PlanService, version string, timeout time.Duration) *cobra.Command {
	root := &cobra.Command{
		Use:   "voiceplan",
		Short: "Turn a spoken or typed request into tracker issues",
		Long: `voiceplan sends a transcript to a language model, validates the
plan it returns and opens one issue per planned task.

Use --dry-run on the plan command to preview the plan without creating issues.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStatusCommand(planner),
		newPlanCommand(planner, timeout),
		newRecentCommand(planner),
	)

	return root
}

// parseRepo accepts "owner/name". An empty value means the configured default.
func parseRepo(value string) (model.Repository, error) {
	if value == "" {
		return model.Repository{}, nil
	}
	owner, name, ok := strings.Cut(value, "/")
	if !ok || owner == "" || name == "" {
		return model.Repository{}, fmt.Errorf("repository must be owner/name, got %q", value)
	}
	return model.Repository{Owner: owner, Name: name}, nil
}
