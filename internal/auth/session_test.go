package auth

import (
	"context"
	"testing"
	"time"

	"skynest/internal/config"
	"skynest/internal/domain"
	"skynest/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *SessionManager {
	return NewSessionManager(config.SessionConfig{Secret: "0123456789abcdef", TTL: time.Hour, Issuer: "skynest-portal"})
}

func TestIssueAndParse(t *testing.T) {
	m := newManager()
	user := models.User{ID: 12, Name: "Dilani", Email: "dilani@skynest.test", Role: models.RoleReceptionist, BranchID: 3}

	token, issued, err := m.Issue(user, "backend-token")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	s, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user, s.User)
	assert.Equal(t, "backend-token", s.BackendToken)
}

func TestParseRejects(t *testing.T) {
	m := newManager()
	user := models.User{ID: 1, Role: models.RoleAdmin}

	t.Run("Expired", func(t *testing.T) {
		token, _, err := m.Issue(user, "t")
		require.NoError(t, err)

		later := newManager()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.Parse(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewSessionManager(config.SessionConfig{Secret: "another-secret-value", Issuer: "skynest-portal"})
		token, _, err := other.Issue(user, "t")
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := NewSessionManager(config.SessionConfig{Secret: "0123456789abcdef", Issuer: "someone-else"})
		token, _, err := other.Issue(user, "t")
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := &Claims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "skynest-portal",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestIssueUnknownRole(t *testing.T) {
	_, _, err := newManager().Issue(models.User{ID: 1, Role: "Manager"}, "t")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)

	s := &Session{User: models.User{ID: 5}}
	got, ok := SessionFromContext(ContextWithSession(context.Background(), s))
	require.True(t, ok)
	assert.Equal(t, int64(5), got.User.ID)
}
