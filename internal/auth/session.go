// Package auth manages the bearer token pair issued when the borrower
// account is created. It persists tokens through a TokenStore and answers
// "is there a usable token right now" without calling the server: the token
// is decoded locally and its expiry checked, signature unverified, because
// the server re-verifies on every request anyway.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clearpathlending/intake/internal/app/storage"
	"github.com/clearpathlending/intake/pkg/logger"
)

// Session is the token lifecycle for one intake run. Safe for concurrent use
// through the underlying store.
type Session struct {
	store storage.TokenStore
	log   *logger.Logger
	now   func() time.Time
}

// NewSession wraps the token store.
func NewSession(store storage.TokenStore, log *logger.Logger) *Session {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Session{store: store, log: log, now: time.Now}
}

// StoreTokens persists the pair returned by the create call.
func (s *Session) StoreTokens(ctx context.Context, access, refresh string) error {
	return s.store.SaveTokens(ctx, storage.Tokens{Access: access, Refresh: refresh})
}

// Token returns the current access token. Implements backend.TokenSource.
func (s *Session) Token(ctx context.Context) (string, bool) {
	tokens, ok, err := s.store.LoadTokens(ctx)
	if err != nil {
		s.log.WithError(err).Warn("token load failed")
		return "", false
	}
	if !ok || tokens.Access == "" {
		return "", false
	}
	return tokens.Access, true
}

// IsAuthenticated reports whether a non-expired access token is stored.
// Tokens that do not parse as JWTs count as unauthenticated; tokens without
// an exp claim count as valid until the server says otherwise.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, ok := s.Token(ctx)
	if !ok {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.log.WithError(err).Debug("stored token is not a jwt")
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		return true
	}
	return exp.After(s.now())
}

// Clear drops the stored pair, used on sign-out and on abandoned intakes.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.ClearTokens(ctx)
}
