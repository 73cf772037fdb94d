package gateway

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"net/http"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
)

// Credentials identify an account to the backend.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries everything needed to open an account.
type Registration struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// AuthResult is a successful sign-in: the bearer token and the owner it
// belongs to. Callers persist it through the session manager.
type AuthResult struct {
	Token   string `json:"token"`
	OwnerID string `json:"owner_id"`
}

// Login exchanges credentials for a session. A rejected sign-in fails
// with InvalidCredentials; the backend does not say which part was wrong.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var result AuthResult
	err := c.attempt(ctx, func(ctx context.Context) error {
		result = AuthResult{}
		return c.postJSON(ctx, "/api/v1/auth/login", creds, &result)
	})
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrUnauthorized) {
			return AuthResult{}, domainerrors.InvalidCredentials("email or password is incorrect")
		}
		return AuthResult{}, err
	}
	return result, nil
}

// Register opens a new account and signs it in.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	var result AuthResult
	err := c.attempt(ctx, func(ctx context.Context) error {
		result = AuthResult{}
		return c.postJSON(ctx, "/api/v1/auth/register", reg, &result)
	})
	if err != nil {
		return AuthResult{}, err
	}
	return result, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("%s", path), bytes.NewReader(data))
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, dest)
}
