// Package fetch implements the GET-with-retry client shared by every remote
// photo source. Transient 5xx failures back off exponentially and a stale
// auth token is refreshed once on 401.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dixieflatline76/PhotoSaver/pkg/metrics"
	"github.com/dixieflatline76/PhotoSaver/util/log"
	"golang.org/x/time/rate"
)

var fetchLog = log.Component("Fetch")

const (
	// DefaultMaxAttempts caps the number of requests made for one Get when
	// the server keeps answering 5xx.
	DefaultMaxAttempts = 4
	// DefaultBaseDelay is the unit of the exponential backoff.
	DefaultBaseDelay = 1 * time.Second

	maxBackoffShift = 16
)

var (
	// ErrRetriesExhausted wraps the last StatusError once every attempt failed with 5xx.
	ErrRetriesExhausted = errors.New("fetch: retries exhausted")
	// ErrNoTokenSource is returned when auth is required but the client has no TokenSource.
	ErrNoTokenSource = errors.New("fetch: auth required but no token source configured")
)

// StatusError is a terminal non-2xx response.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

// Options controls a single Get.
type Options struct {
	RequiresAuth   bool // attach a token from the TokenSource
	AllowAuthRetry bool // on 401, drop the cached token and retry once
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Backoff returns the delay before retry number attempt (1-based):
// (2^attempt - 1) * base.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return time.Duration((1<<attempt)-1) * base
}

// Client performs GET requests with retry.
type Client struct {
	httpClient  *http.Client
	tokens      TokenSource
	authScheme  string
	maxAttempts int
	baseDelay   time.Duration
	sleep       Sleeper
	limiter     *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets where auth tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithAuthScheme sets the Authorization scheme. An empty scheme sends the raw token.
func WithAuthScheme(scheme string) Option {
	return func(c *Client) { c.authScheme = scheme }
}

// WithMaxAttempts sets the attempt cap for 5xx retries.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the backoff unit.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithSleeper replaces the wait between retries. Tests use it to record delays.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithRateLimit paces outgoing requests.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// NewClient creates a Client over httpClient.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:  httpClient,
		authScheme:  "Bearer",
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with opts applied. Sources use it to attach
// their own credentials to the shared client.
func (c *Client) With(opts ...Option) *Client {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Get fetches rawURL and returns the response body.
func (c *Client) Get(ctx context.Context, rawURL string, opts Options) ([]byte, error) {
	retries := 0
	authRetried := false

	for {
		body, serr, err := c.once(ctx, rawURL, opts.RequiresAuth)
		if err != nil {
			metrics.FetchAttempts.WithLabelValues("error").Inc()
			return nil, err
		}
		if serr == nil {
			metrics.FetchAttempts.WithLabelValues("ok").Inc()
			return body, nil
		}

		switch {
		case serr.Code == http.StatusUnauthorized && opts.RequiresAuth && opts.AllowAuthRetry && !authRetried:
			metrics.FetchAttempts.WithLabelValues("auth_retry").Inc()
			fetchLog.Printf("%s: token rejected, refreshing", rawURL)
			c.tokens.Invalidate()
			authRetried = true

		case serr.Code >= 500 && serr.Code < 600:
			retries++
			if retries >= c.maxAttempts {
				metrics.FetchAttempts.WithLabelValues("error").Inc()
				return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, serr)
			}
			metrics.FetchAttempts.WithLabelValues("retry").Inc()
			delay := Backoff(retries, c.baseDelay)
			fetchLog.Debugf("%s: %s, retry %d in %v", rawURL, serr.Status, retries, delay)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			metrics.FetchAttempts.WithLabelValues("error").Inc()
			return nil, serr
		}
	}
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, opts Options, v any) error {
	body, err := c.Get(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// once makes a single request. A non-2xx response comes back as a StatusError,
// transport failures as err.
func (c *Client) once(ctx context.Context, rawURL string, withAuth bool) ([]byte, *StatusError, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if withAuth {
		if c.tokens == nil {
			return nil, nil, ErrNoTokenSource
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("get auth token: %w", err)
		}
		if c.authScheme == "" {
			req.Header.Set("Authorization", token)
		} else {
			req.Header.Set("Authorization", c.authScheme+" "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: rawURL}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
