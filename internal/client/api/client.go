package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/mtereshin/medtrack/internal/common"
	"github.com/mtereshin/medtrack/internal/logging"
)

// Client is the REST client for the MedTrack backend. Safe for concurrent
// use; the only mutable state is the cookie jar (managed by net/http) and
// the refresh generation counter.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	// refreshMu serializes session refreshes; refreshGen increments on
	// every successful refresh so callers that lost the race can skip
	// their own refresh and go straight to the replay.
	refreshMu  sync.Mutex
	refreshGen uint64

	// onSessionExpired fires once per terminal auth failure. The CLI uses
	// it to clear the session store and drop to the logged-out prompt,
	// the analogue of a browser redirect to /login.
	onSessionExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The cookie jar is
// preserved unless the provided client already carries one.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h.Jar == nil {
			h.Jar = c.http.Jar
		}
		c.http = h
	}
}

// WithSessionExpiredHook sets the callback invoked when a session refresh
// fails terminally.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// NewClient builds a Client for the given base URL (including the /api
// prefix). The timeout applies per request.
func NewClient(baseURL string, timeout time.Duration, log logging.Logger, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do performs an authenticated JSON request with the one-shot
// refresh-and-replay behavior. body (if non-nil) is marshalled once so the
// replay sends identical bytes; out (if non-nil) receives the decoded
// response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doAuth(ctx, method, path, body, out, true)
}

// doSilent runs the same refresh-and-replay flow but never fires the
// session-expired hook. The startup session probe uses it: there an
// expired or absent session is an expected outcome, not an event the
// user should hear about.
func (c *Client) doSilent(ctx context.Context, method, path string, body, out any) error {
	return c.doAuth(ctx, method, path, body, out, false)
}

func (c *Client) doAuth(ctx context.Context, method, path string, body, out any, notify bool) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}

	gen := c.currentRefreshGen()

	err = c.attempt(ctx, method, path, payload, out)
	if !isUnauthorized(err) {
		return err
	}

	if refreshErr := c.refreshSession(ctx, gen); refreshErr != nil {
		c.log.Warn(ctx, "session refresh failed", "path", path, "error", refreshErr)
		if notify {
			c.expireSession()
		}
		return common.ErrSessionExpired
	}

	// Replay exactly once. A second 401 here is terminal for this request;
	// no further refresh is attempted.
	err = c.attempt(ctx, method, path, payload, out)
	if isUnauthorized(err) {
		if notify {
			c.expireSession()
		}
		return common.ErrSessionExpired
	}
	return err
}

// doOnce performs a request without the refresh-and-replay behavior. Used
// by the auth endpoints themselves: a 401 from login or register means bad
// credentials and must surface verbatim, and the refresh call must never
// recurse into itself.
func (c *Client) doOnce(ctx context.Context, method, path string, body, out any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}
	return c.attempt(ctx, method, path, payload, out)
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// refreshSession performs the silent refresh call, coalescing concurrent
// attempts: if another request already refreshed the session while this
// one was waiting on the mutex, the refresh is skipped and the caller
// proceeds straight to its replay.
func (c *Client) refreshSession(ctx context.Context, seenGen uint64) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.refreshGen != seenGen {
		return nil
	}

	if err := c.doOnce(ctx, http.MethodPost, "/auth/token/refresh/", nil, nil); err != nil {
		return err
	}
	c.refreshGen++
	return nil
}

func (c *Client) currentRefreshGen() uint64 {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshGen
}

func (c *Client) expireSession() {
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return payload, nil
}

func isUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}
