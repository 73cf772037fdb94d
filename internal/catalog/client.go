// Package catalog queries the Open Library API and normalizes its
// heterogeneous responses into canonical BookRecords.
package catalog

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
)

const defaultBaseURL = "https://openlibrary.org"

// Policy controls timeout and retry behavior for catalog requests.
// The zero value means "no retries", matching the default behavior:
// a failed fetch requires a new user-initiated action.
type Policy struct {
	// Timeout bounds a single request attempt. Zero means no deadline
	// beyond the HTTP client's own.
	Timeout time.Duration
	// Retries is the number of additional attempts after a transport
	// failure. Non-2xx responses are never retried.
	Retries int
	// Backoff is the pause between attempts.
	Backoff time.Duration
}

// DefaultPolicy returns the stock policy: one attempt, 15 second timeout.
func DefaultPolicy() Policy {
	return Policy{Timeout: 15 * time.Second}
}

// Client provides access to the Open Library search and subjects APIs.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	policy      Policy
	logger      *slog.Logger

	// offsetFn picks the random offset for subject sampling.
	// Overridable in tests for determinism.
	offsetFn func(n int) int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Open Library base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithPolicy sets the timeout/retry policy for all requests.
func WithPolicy(p Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new Open Library client.
// Rate limited to 1 request per second to stay well under the
// API's courtesy limits for anonymous clients.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     defaultBaseURL,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		policy:      DefaultPolicy(),
		logger:      logger,
		offsetFn:    rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
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
		// Zero results is an answer, not a failure - never retried.
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
	}
	return err
}
