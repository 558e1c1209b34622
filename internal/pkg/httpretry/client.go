// Package httpretry wraps an HTTP client with bounded retries on transient
// failures.
package httpretry

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/ignite/software-catalog/internal/pkg/logger"
)

// Doer executes HTTP requests. *http.Client and *Client both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client retries network errors and 429/5xx gateway responses with
// exponential backoff and full jitter. Client errors are returned as-is.
type Client struct {
	doer       Doer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithMaxRetries sets the number of attempts after the first one.
func WithMaxRetries(n int) Option { return func(c *Client) { c.maxRetries = n } }

// WithBackoff sets the first and the largest delay between attempts.
func WithBackoff(base, max time.Duration) Option {
	return func(c *Client) { c.baseDelay, c.maxDelay = base, max }
}

// New wraps doer. A nil doer uses an http.Client with a 30s timeout.
func New(doer Doer, opts ...Option) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{doer: doer, maxRetries: 2, baseDelay: 500 * time.Millisecond, maxDelay: 10 * time.Second}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Do sends req, retrying while attempts remain. The last response is
// returned unchanged so callers can read its status and body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: reset body: %w", err)
				}
				req.Body = body
			}
			delay := c.delay(attempt)
			logger.Warn("httpretry: retrying", "attempt", attempt, "max", c.maxRetries,
				"host", req.URL.Host, "path", req.URL.Path, "wait", delay.String())

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			}
		}

		resp, err := c.doer.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		if !retryable(resp.StatusCode) || attempt == c.maxRetries {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: %s returned %d", req.URL.Host, resp.StatusCode)
	}
	return nil, lastErr
}

// delay is random(0, min(maxDelay, baseDelay*2^(attempt-1))), at least 10ms.
func (c *Client) delay(attempt int) time.Duration {
	d := c.baseDelay << (attempt - 1)
	if d > c.maxDelay || d <= 0 {
		d = c.maxDelay
	}
	j := time.Duration(rand.Int63n(int64(d) + 1))
	if j < 10*time.Millisecond {
		j = 10 * time.Millisecond
	}
	return j
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
