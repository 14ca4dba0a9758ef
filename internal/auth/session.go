// Package auth issues portal sessions and decides what each role may do.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"skynest/internal/config"
	"skynest/internal/domain"
	"skynest/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims are the signed contents of a portal session token.
type Claims struct {
	Name         string      `json:"name"`
	Email        string      `json:"email,omitempty"`
	Role         models.Role `json:"role"`
	BranchID     int64       `json:"branch_id,omitempty"`
	GuestID      int64       `json:"guest_id,omitempty"`
	BackendToken string      `json:"bt"`
	jwt.RegisteredClaims
}

type Session struct {
	User         models.User `json:"user"`
	BackendToken string      `json:"-"`
	ExpiresAt    time.Time   `json:"expires_at"`
}

type SessionManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewSessionManager(cfg config.SessionConfig) *SessionManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = models.DefaultSessionTTL
	}
	return &SessionManager{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue signs a session for user wrapping the backend token.
func (m *SessionManager) Issue(user models.User, backendToken string) (string, *Session, error) {
	if _, ok := models.ParseRole(string(user.Role)); !ok {
		return "", nil, fmt.Errorf("%w: unknown role %q", domain.ErrForbidden, user.Role)
	}

	now := m.now()
	expires := now.Add(m.ttl)
	claims := &Claims{
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		BranchID:     user.BranchID,
		GuestID:      user.GuestID,
		BackendToken: backendToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return token, &Session{User: user, BackendToken: backendToken, ExpiresAt: expires}, nil
}

// Parse verifies a session token. Any failure is ErrUnauthorized.
func (m *SessionManager) Parse(tokenString string) (*Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid session", domain.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid session subject", domain.ErrUnauthorized)
	}
	role, ok := models.ParseRole(string(claims.Role))
	if !ok {
		return nil, fmt.Errorf("%w: invalid session role", domain.ErrUnauthorized)
	}

	return &Session{
		User: models.User{
			ID:       id,
			Name:     claims.Name,
			Email:    claims.Email,
			Role:     role,
			BranchID: claims.BranchID,
			GuestID:  claims.GuestID,
		},
		BackendToken: claims.BackendToken,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

type sessionKey struct{}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
