package service

import (
	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/config"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service/issue_tracker"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/store"
)

type ServicesConfig struct {
	Registry ProviderRegistry
	Tracker  issue_tracker.IssueTrackerService
	Recorder OutcomeRecorder    // Optional
	History  store.SessionStore // Optional
	Defaults config.DefaultsConfig
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{cfg: cfg}
}

func (s *Services) Planner() PlanService {
	return NewPlanService(s.cfg.Registry, s.cfg.Tracker, s.cfg.Recorder, s.cfg.Defaults)
}

func (s *Services) Sessions() SessionService {
	return NewSessionService(s.cfg.History)
}
