package api

import (
	"context"
	"net/http"

	"github.com/mtereshin/medtrack/internal/client/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates an account. The onboarding fields are optional;
// when the onboarding wizard ran before registration its draft is attached
// here so the server can complete onboarding in the same call.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
}

type authResponse struct {
	User models.User `json:"user"`
}

// Login authenticates with email and password. The session cookies are set
// by the server and stored in the jar. A 401 here means bad credentials
// and is returned as-is; it never triggers a refresh.
func (c *Client) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	var resp authResponse
	req := loginRequest{Email: email, Password: string(password)}
	if err := c.doOnce(ctx, http.MethodPost, "/auth/login/", req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Register creates a new account and logs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var resp authResponse
	if err := c.doOnce(ctx, http.MethodPost, "/auth/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout invalidates the server session. Cookie cleanup happens via the
// Set-Cookie headers of the response; a failed logout is not retried.
func (c *Client) Logout(ctx context.Context) error {
	return c.doOnce(ctx, http.MethodPost, "/auth/logout/", nil, nil)
}

// Me returns the authenticated user, refreshing the session once if
// needed. It is the startup session probe, so a terminal auth failure is
// reported to the caller but never to the session-expired hook: a cold
// start without a session must stay quiet.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doSilent(ctx, http.MethodGet, "/auth/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
