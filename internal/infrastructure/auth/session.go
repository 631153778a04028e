package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

// Session holds the bearer token of one authenticated operator.
// It is passed explicitly to the API client instead of being read from ambient state.
type Session struct {
	mu     sync.RWMutex
	token  string
	parser *jwt.Parser
	now    func() time.Time
	// skew is subtracted from the exp claim so a token is not sent right before it lapses.
	skew time.Duration
}

// NewSession creates a session around token, which may be empty
func NewSession(token string) *Session {
	return &Session{
		token:  strings.TrimSpace(token),
		parser: jwt.NewParser(),
		now:    time.Now,
		skew:   5 * time.Second,
	}
}

// Token implements providers.CredentialProvider
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return "", apperrors.NewUnauthorizedError("not signed in")
	}
	if s.expired(token) {
		observability.LoggerFromContext(ctx).Info().Msg("session token expired, clearing session")
		s.Invalidate()
		return "", apperrors.NewUnauthorizedError("session expired")
	}
	return token, nil
}

// Set replaces the session token, e.g. after a login
func (s *Session) Set(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

// Invalidate implements providers.CredentialProvider
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Authenticated reports whether a usable token is present
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	return token != "" && !s.expired(token)
}

// ExpiresAt returns the exp claim of a JWT token; opaque tokens report false.
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	return s.expiry(token)
}

func (s *Session) expired(token string) bool {
	exp, ok := s.expiry(token)
	if !ok {
		return false
	}
	return !s.now().Before(exp.Add(-s.skew))
}

func (s *Session) expiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	// The signature is the backend's concern; only exp is read here.
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
