// Package httpclient provides the shared, rate-limited, retrying HTTP
// client used by PreviewProbe and the Ingestor.
//
// A rate.Limiter guards every outbound request; transient failures retry
// with exponential backoff per the timeout/backoff table below.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a normal fetch request.
	DefaultTimeout = 20 * time.Second
	// PreviewTimeout bounds a HEAD/ranged-GET preview probe.
	PreviewTimeout = 15 * time.Second

	retryInitial    = 1 * time.Second
	retryMultiplier = 2.0
	retryMax        = 30 * time.Second
	retryAttempts   = 3
)

// Client wraps *http.Client with a politeness rate limiter and a retry
// policy for network-like failures.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit overrides the default politeness limiter (1 request/second,
// burst 2).
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// New constructs a Client with sane defaults: 1 req/s politeness limit, no
// per-request timeout baked into the underlying http.Client (callers supply
// their own deadline via context, per DefaultTimeout/PreviewTimeout above).
func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		limiter: rate.NewLimiter(1, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs req, waiting on the rate limiter first and retrying
// network-like failures with exponential backoff (initial 1s, x2, max 30s,
// 3 attempts). Non-retryable responses (4xx other than 429) are returned
// on the first attempt.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	backoff := retryInitial
	var lastErr error

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("httpclient: rate limiter: %w", err)
		}

		resp, err := c.http.Do(req.Clone(ctx))
		if err == nil && !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err == nil {
			lastErr = fmt.Errorf("httpclient: retryable status %d", resp.StatusCode)
			resp.Body.Close()
		} else {
			lastErr = err
			if !isRetryableError(err) {
				return nil, err
			}
		}

		if attempt == retryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(time.Duration(float64(backoff)*retryMultiplier), retryMax)
	}

	return nil, fmt.Errorf("httpclient: %s %s failed after %d attempts: %w", req.Method, req.URL, retryAttempts, lastErr)
}

// Get issues a GET with DefaultTimeout applied to ctx and returns the body
// read in full (callers are responsible for any size cap).
func (c *Client) Get(ctx context.Context, url string) ([]byte, *http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("httpclient: read body: %w", err)
	}
	return body, resp, nil
}

func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500
}

func isRetryableError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
