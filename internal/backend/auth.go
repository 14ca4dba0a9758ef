package backend

import (
	"context"

	"skynest/internal/models"
)

// Login exchanges credentials for a backend token and the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	body := models.LoginRequest{Email: email, Password: password}
	if err := c.post(ctx, "auth.login", "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
