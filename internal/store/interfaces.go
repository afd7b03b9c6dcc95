package store

import (
	"context"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/db"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
)

// Database is what the stores need from core/db; *db.DB satisfies it.
type Database interface {
	Pool() db.Querier
	WithTx(ctx context.Context, fn func(q db.Querier) error) error
}

// SessionStore persists plan outcomes and reads them back as history.
type SessionStore interface {
	RecordOutcome(ctx context.Context, outcome model.PlanOutcome) error
	ListRecent(ctx context.Context, limit, offset int) ([]model.Session, error)
}
