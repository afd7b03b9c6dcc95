package service

import (
	"context"
	"errors"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
)

// OutcomeRecorder is the hook a collaborator implements to keep plan history.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, outcome model.PlanOutcome) error
}

// MultiRecorder fans an outcome out to several recorders; every one is attempted.
type MultiRecorder []OutcomeRecorder

func (m MultiRecorder) RecordOutcome(ctx context.Context, outcome model.PlanOutcome) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordOutcome(ctx, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
