package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/store"
)

var ErrHistoryUnavailable = errors.New("session history is not configured")

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type SessionService interface {
	List(ctx context.Context, limit, offset int) ([]model.Session, error)
}

type sessionService struct {
	sessions store.SessionStore
}

func NewSessionService(sessions store.SessionStore) SessionService {
	return &sessionService{sessions: sessions}
}

func (s *sessionService) List(ctx context.Context, limit, offset int) ([]model.Session, error) {
	if s.sessions == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	sessions, err := s.sessions.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}
