package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSession_EmptyToken(t *testing.T) {
	s := NewSession("")

	_, err := s.Token(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	assert.False(t, s.Authenticated())
}

func TestSession_OpaqueToken(t *testing.T) {
	s := NewSession("  opaque-token  ")

	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
	assert.True(t, s.Authenticated())

	_, ok := s.ExpiresAt()
	assert.False(t, ok)
}

func TestSession_ValidJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	s := NewSession(signedToken(t, exp))

	_, err := s.Token(context.Background())
	require.NoError(t, err)

	got, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())
}

func TestSession_ExpiredJWTClearsSession(t *testing.T) {
	s := NewSession(signedToken(t, time.Now().Add(-time.Minute)))

	_, err := s.Token(context.Background())
	require.Error(t, err)
	assert.Equal(t, "session expired", apperrors.Message(err))

	_, err = s.Token(context.Background())
	assert.Equal(t, "not signed in", apperrors.Message(err))
}

func TestSession_SetAndInvalidate(t *testing.T) {
	s := NewSession("")
	s.Set("fresh")
	assert.True(t, s.Authenticated())

	s.Invalidate()
	assert.False(t, s.Authenticated())
}
