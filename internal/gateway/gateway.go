// Package gateway is the device-side client for the Shelfmark backend:
// authentication, profile reads and updates, and account deletion.
//
// Authenticated calls attach a bearer token from an explicit TokenSource
// handed in at construction. Nothing here reads ambient session state.
package gateway

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
)

// TokenSource supplies the current bearer token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// Policy controls timeout and retry behavior for backend requests.
// The zero value means "no retries": a failed call surfaces to the user,
// who retries by acting again.
type Policy struct {
	// Timeout bounds a single request attempt.
	Timeout time.Duration
	// Retries is the number of additional attempts after a transport or
	// server failure. Rejections (4xx) are never retried.
	Retries int
	// Backoff is the pause between attempts.
	Backoff time.Duration
}

// DefaultPolicy returns the stock policy: one attempt, 15 second timeout.
func DefaultPolicy() Policy {
	return Policy{Timeout: 15 * time.Second}
}

// Client talks to the backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	policy     Policy
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPolicy sets the timeout/retry policy for all requests.
func WithPolicy(p Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a backend client. tokens may be a session manager or
// any other explicit token source; it is consulted per request, so a
// sign-in that happens after construction is picked up.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		tokens:  tokens,
		policy:  DefaultPolicy(),
		logger:  logger.With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// attempt runs fn up to 1+Retries times per the client policy, applying
// the per-attempt timeout. fn must be safe to call repeatedly.
func (c *Client) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for i := 0; i <= c.policy.Retries; i++ {
		if i > 0 && c.policy.Backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.policy.Backoff):
			}
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if c.policy.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.policy.Timeout)
		}
		err = fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		// Only availability failures are worth retrying. A rejection
		// will not change on a second attempt.
		if !domainerrors.Is(err, domainerrors.ErrUnavailable) {
			return err
		}
	}
	return err
}

// do sends one request, maps the response status onto the error taxonomy,
// and decodes a 2xx body into dest when dest is non-nil.
func (c *Client) do(req *http.Request, dest any) error {
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "backend unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapStatus(resp)
	}

	if dest == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.UnmarshalRead(resp.Body, dest); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "backend sent an unreadable response")
	}
	return nil
}

func (c *Client) mapStatus(resp *http.Response) error {
	detail := errorDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domainerrors.Unauthorized(detail)
	case http.StatusNotFound:
		return domainerrors.NotFound(detail)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainerrors.Validation(detail)
	case http.StatusConflict:
		return domainerrors.Conflict(detail)
	default:
		return domainerrors.Unavailablef("backend returned status %d", resp.StatusCode)
	}
}

// errorDetail pulls a human-readable message out of a problem+json error
// body, falling back to a generic line.
func errorDetail(body io.Reader) string {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.UnmarshalRead(body, &problem); err == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	return "the request was rejected"
}

func (c *Client) url(path string, args ...any) string {
	return c.baseURL + fmt.Sprintf(path, args...)
}
