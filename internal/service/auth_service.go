package service

import (
	"context"
	"fmt"
	"net/http"

	"skynest/internal/auth"
	"skynest/internal/backend"
	"skynest/internal/domain"
	"skynest/internal/models"
)

// LoginResult is returned to the browser after a successful sign-in.
type LoginResult struct {
	Token   string        `json:"token"`
	Session *auth.Session `json:"session"`
	Notice  models.Notice `json:"notice"`
}

type AuthService struct {
	base
	sessions *auth.SessionManager
}

func NewAuthService(d Deps) *AuthService {
	return &AuthService{base: newBase(d), sessions: d.Sessions}
}

// Login signs in against the backend and wraps its token in a portal session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	resp, err := s.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		if st := backend.StatusOf(err); st == http.StatusUnauthorized || st == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	token, session, err := s.sessions.Issue(resp.User, resp.Token)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", resp.User.ID).Str("role", string(resp.User.Role)).Msg("user signed in")
	return &LoginResult{
		Token:   token,
		Session: session,
		Notice:  models.Success("Welcome back, " + resp.User.Name),
	}, nil
}
