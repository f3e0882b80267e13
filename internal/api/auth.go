package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/passvault/cli/internal/models"
)

// CheckSession validates a stored token and returns its user
func (c *Client) CheckSession(ctx context.Context, token string) (*models.User, error) {
	var resp models.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("session response has no user")
	}
	return resp.User, nil
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, data models.LoginData) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", models.AuthRequest[models.LoginData]{User: data})
}

// Register creates an account and returns its bearer token
func (c *Client) Register(ctx context.Context, data models.RegisterData) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/sign_up", models.AuthRequest[models.RegisterData]{User: data})
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return nil, err
	}
	if resp.AuthToken == "" || resp.User == nil {
		return nil, fmt.Errorf("authentication response is missing token or user")
	}
	return &resp, nil
}
