package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

// AuthClient wraps the upstream auth endpoints.
type AuthClient struct {
	c *Client
}

// Auth returns the auth client.
func (c *Client) Auth() *AuthClient {
	return &AuthClient{c: c}
}

// LoginResult is the upstream login response.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a bearer token and the current user.
func (a *AuthClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var raw json.RawMessage
	if err := a.c.do(ctx, http.MethodPost, "/auth/login", "auth", body, &raw); err != nil {
		return LoginResult{}, err
	}

	var result LoginResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return LoginResult{}, err
	}
	if result.Token == "" {
		// Some deployments nest the payload under data.
		nested, err := decodeOne[LoginResult](raw, "auth")
		if err == nil && nested.Token != "" {
			return nested, nil
		}
	}
	return result, nil
}

// ForgotPassword asks the backend to mail a reset link.
func (a *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return a.c.do(ctx, http.MethodPost, "/auth/forgot-password", "auth", body, nil)
}

// ResetPassword completes a reset flow with the mailed token.
func (a *AuthClient) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"password": password}
	return a.c.do(ctx, http.MethodPost, "/auth/reset-password/"+url.PathEscape(token), "auth", body, nil)
}

// Me returns the authenticated user.
func (a *AuthClient) Me(ctx context.Context) (models.User, error) {
	var raw json.RawMessage
	if err := a.c.do(ctx, http.MethodGet, "/auth/me", "auth", nil, &raw); err != nil {
		return models.User{}, err
	}
	return decodeOne[models.User](raw, "user")
}
