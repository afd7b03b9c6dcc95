package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/logger"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/config"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/cli"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/provider"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service/issue_tracker"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.SetupCLI(cfg)

	tracker, err := issue_tracker.New(cfg.Tracker)
	if err != nil {
		return fmt.Errorf("creating issue tracker client: %w", err)
	}

	planner := service.NewPlanService(
		provider.NewRegistry(config.LoadProviders, nil),
		tracker,
		nil,
		cfg.Defaults,
	)

	return cli.NewRootCommand(planner, version, cfg.Defaults.PlanTimeout).ExecuteContext(ctx)
}
