package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"skynest/internal/auth"
	"skynest/internal/backend"
	"skynest/internal/domain"
)

func saveSession(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// loadSession reads and verifies the saved portal token.
func loadSession(path string, sessions *auth.SessionManager) (*auth.Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: run skynestctl login first", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return sessions.Parse(strings.TrimSpace(string(raw)))
}

// sessionContext loads the session and puts its backend token into ctx.
func sessionContext(ctx context.Context) (context.Context, *auth.Session, error) {
	s, err := loadSession(sessionPath, env.sessions)
	if err != nil {
		return ctx, nil, err
	}
	ctx = auth.ContextWithSession(ctx, s)
	return backend.ContextWithToken(ctx, s.BackendToken), s, nil
}
