package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

func newStatusCommand(planner service.PlanService) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which providers and which issue tracker are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := planner.ProviderStatus(cmd.Context())
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Providers:")
			for _, p := range status.Providers {
				fmt.Fprintf(out, "  %-8s %s\n", p.ID, configuredLabel(p.IsConfigured))
			}
			fmt.Fprintf(out, "Tracker:\n  %-8s %s\n", status.Tracker.ID, configuredLabel(status.Tracker.IsConfigured))
			return nil
		},
	}
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
