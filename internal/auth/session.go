// Package auth holds the console's authentication session: the current
// user and bearer token, backed by a persisted token slot. The session is
// the only writer of that state; everything else reads through it.
package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// meProber validates a token against the who-am-I endpoint.
type meProber interface {
	Me(ctx context.Context, token string) (api.UserProfile, error)
}

// Session holds the authenticated user and token. Zero value is anonymous.
type Session struct {
	mu    sync.RWMutex
	user  *api.UserProfile
	token string

	store  TokenStore
	logger *zap.Logger
}

// NewSession creates a session backed by the given token store.
func NewSession(store TokenStore, logger *zap.Logger) *Session {
	return &Session{store: store, logger: logger}
}

// Init restores a persisted token, if any, and validates it against the
// who-am-I endpoint. A rejected or unreadable token is discarded and the
// session stays anonymous; no error is surfaced.
func (s *Session) Init(ctx context.Context, probe meProber) {
	token, err := s.store.Load()
	if err != nil || token == "" {
		return
	}

	user, err := probe.Me(ctx, token)
	if err != nil {
		s.logger.Debug("stored token rejected, discarding", zap.Error(err))
		_ = s.store.Clear()
		return
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	s.logger.Info("session restored", zap.String("username", user.Username))
}

// Login persists the token and sets the session state synchronously.
func (s *Session) Login(token string, user api.UserProfile) {
	if err := s.store.Save(token); err != nil {
		// State is still set; persistence failure only loses the session
		// across restarts.
		s.logger.Warn("failed to persist token", zap.Error(err))
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
}

// Logout clears both the session state and the persisted token.
func (s *Session) Logout() {
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear persisted token", zap.Error(err))
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

// Token returns the current bearer token, "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user, nil when anonymous.
func (s *Session) User() *api.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}
