package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spotdesk/spotdesk-go/users"
)

// Fixed auth endpoint paths on the external backend.
const (
	pathLogin          = "/auth/login"
	pathRegister       = "/auth/register"
	pathRefresh        = "/auth/refresh"
	pathLogout         = "/auth/logout"
	pathProfile        = "/auth/profile"
	pathForgotPassword = "/auth/forgot-password"
	pathResetPassword  = "/auth/reset-password"
)

// Credentials is the login request body. Role is optional - the backend uses
// it to disambiguate accounts that exist under more than one role.
type Credentials struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     *users.RoleType `json:"role,omitempty"`
}

// Registration is the register request body.
type Registration struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     users.RoleType `json:"role"`
	Phone    *string        `json:"phone,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User         users.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// RefreshResponse is returned by the refresh endpoint. RefreshToken is only
// present when the backend rotates it.
type RefreshResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken *string `json:"refreshToken,omitempty"`
}

// ProfileUpdate carries the mutable profile fields. Nil fields are omitted so
// the backend treats the update as partial.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Phone  *string `json:"phone,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a token pair and the user they belong to.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, "", creds, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, errors.New("[Client.Login] backend returned an incomplete token pair")
	}
	return &resp, nil
}

// Register creates an account and returns the same shape as Login.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, pathRegister, "", reg, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, errors.New("[Client.Register] backend returned an incomplete token pair")
	}
	return &resp, nil
}

// Refresh mints a new access token from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var resp RefreshResponse
	if err := c.do(ctx, http.MethodPost, pathRefresh, "", body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("[Client.Refresh] backend returned no access token")
	}
	return &resp, nil
}

// Logout invalidates the refresh token server-side. Callers treat this as
// best-effort; local cleanup never depends on its outcome.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	return c.do(ctx, http.MethodPost, pathLogout, accessToken, body, nil)
}

// Profile fetches the authenticated user. The backend answers either with the
// user object directly or wrapped in {"user": ...}; both shapes are accepted.
func (c *Client) Profile(ctx context.Context, accessToken string) (*users.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, pathProfile, accessToken, nil, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

// UpdateProfile sends a partial profile update and returns the server's
// representation of the user. Callers must adopt the returned user wholesale
// rather than merging locally, so server-computed fields never drift.
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*users.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, pathProfile, accessToken, update, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

// ForgotPassword triggers a password-reset email. Stateless one-shot.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	body := map[string]string{"email": email}
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, pathForgotPassword, "", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword completes a password reset using an emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	body := map[string]string{"token": token, "newPassword": newPassword}
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, pathResetPassword, "", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func decodeUser(raw json.RawMessage) (*users.User, error) {
	var envelope struct {
		User *users.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.User != nil && envelope.User.ID != "" {
		return envelope.User, nil
	}
	var user users.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, errors.Wrap(err, "[decodeUser] unexpected profile shape")
	}
	if user.ID == "" {
		return nil, errors.New("[decodeUser] profile response missing user")
	}
	return &user, nil
}
