package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/passage/internal/client/store"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
)

// SessionStorage persists the SDK session as JSON in the local store.
type SessionStorage struct {
	Sessions store.Sessions
}

var _ authsdk.SessionStorage = (*SessionStorage)(nil)

func NewSessionStorage(sessions store.Sessions) *SessionStorage {
	return &SessionStorage{Sessions: sessions}
}

func (s *SessionStorage) LoadSession(ctx context.Context) (*authsdk.Session, error) {
	payload, err := s.Sessions.LoadSession(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session authsdk.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		// A corrupt record is treated as signed out and dropped.
		_ = s.Sessions.DeleteSession(ctx)
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *SessionStorage) SaveSession(ctx context.Context, session *authsdk.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.Sessions.SaveSession(ctx, payload)
}

func (s *SessionStorage) RemoveSession(ctx context.Context) error {
	return s.Sessions.DeleteSession(ctx)
}
