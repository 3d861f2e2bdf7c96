// Package fetch performs throttled, retrying JSON fetches against
// third-party HTTP endpoints.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/quotafence/quotafence/internal/core"
	"github.com/quotafence/quotafence/internal/core/throttle"
)

const (
	defaultMaxRetries = 2

	// Backoff applied after a 429 without a usable Retry-After hint.
	defaultBackoffDelay = 2 * time.Second

	// Backoff applied after a transport-level failure.
	defaultNetworkDelay = time.Second

	defaultUserAgent = "quotafence/1.0 (+https://github.com/quotafence/quotafence)"
)

// Options customizes a single fetch. Caller headers are merged over the
// client defaults.
type Options struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

// Client issues rate-limited requests. The throttle is consulted before any
// network attempt; denials are decisive for the call and left to the caller
// to retry later.
type Client struct {
	Throttle  *throttle.Throttle
	HTTP      *http.Client
	UserAgent string

	// Sleep is the backoff hook between attempts. Tests replace it to avoid
	// wall-clock waits; nil means a context-aware real sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Fetch performs an HTTP request with throttling, bounded retries, and
// adaptive backoff. Ordinary HTTP and network failures are reported in-band
// through the result, never as an error.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) *core.FetchResult {
	if ctx == nil {
		ctx = context.Background()
	}

	domain := Domain(rawURL)
	cfg := c.Throttle.Config(domain)

	if !c.Throttle.Allow(domain) {
		return &core.FetchResult{
			OK:     false,
			Status: http.StatusTooManyRequests,
			Err:    fmt.Sprintf("rate limit exceeded for %s", domain),
		}
	}

	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}

	var lastErr string
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := c.attempt(ctx, rawURL, opts)
		if err != nil {
			lastErr = err.Error()
			if err := c.sleep(ctx, c.networkDelay(cfg)); err != nil {
				return failure(lastErr)
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				lastErr = readErr.Error()
				if err := c.sleep(ctx, c.networkDelay(cfg)); err != nil {
					return failure(lastErr)
				}
				continue
			}
			if len(body) > 0 && !json.Valid(body) {
				lastErr = "invalid JSON response"
				if err := c.sleep(ctx, c.networkDelay(cfg)); err != nil {
					return failure(lastErr)
				}
				continue
			}
			return &core.FetchResult{
				OK:     true,
				Status: resp.StatusCode,
				Data:   json.RawMessage(body),
			}

		case resp.StatusCode == http.StatusTooManyRequests:
			delay, _ := retryAfterHeader(resp)
			if delay <= 0 {
				delay = c.backoffDelay(cfg)
			}
			if err := c.sleep(ctx, delay); err != nil {
				return failure(fmt.Sprintf("HTTP %d", resp.StatusCode))
			}

		default:
			lastErr = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
	}

	return failure(lastErr)
}

// SimpleJSON is the best-effort path: one attempt, no throttling, no
// retries. Any failure (non-2xx, transport error, undecodable body) is
// returned as an error for the caller to treat as "no data".
func (c *Client) SimpleJSON(ctx context.Context, rawURL string, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := c.attempt(ctx, rawURL, Options{})
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Domain extracts the throttling key from a URL, falling back to the
// default domain when the host cannot be determined.
func Domain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return throttle.DefaultDomain
	}
	return parsed.Hostname()
}

func (c *Client) attempt(ctx context.Context, rawURL string, opts Options) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "application/json")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return client.Do(req)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if c != nil && c.Sleep != nil {
		return c.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) backoffDelay(cfg core.ThrottleConfig) time.Duration {
	if cfg.RetryDelay > 0 {
		return cfg.RetryDelay
	}
	return defaultBackoffDelay
}

func (c *Client) networkDelay(cfg core.ThrottleConfig) time.Duration {
	if cfg.RetryDelay > 0 {
		return cfg.RetryDelay
	}
	return defaultNetworkDelay
}

func (c *Client) userAgent() string {
	if c != nil && c.UserAgent != "" {
		return c.UserAgent
	}
	return defaultUserAgent
}

func failure(lastErr string) *core.FetchResult {
	if lastErr == "" {
		lastErr = "max retries exceeded"
	}
	return &core.FetchResult{OK: false, Status: 0, Err: lastErr}
}

var errNoThrottle = errors.New("fetch client requires a throttle")

// Validate reports configuration problems before first use.
func (c *Client) Validate() error {
	if c == nil || c.Throttle == nil {
		return errNoThrottle
	}
	return nil
}
