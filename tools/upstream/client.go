package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"dishadvisor/tools/cache"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultUserAgent = "dishadvisor/0.1"

	// bytes of a failed response body kept in the error message
	errorBodyLimit = 512
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs GET+JSON calls against third-party APIs with a per-call timeout and an optional response cache.
// It is safe for concurrent use.
type Client struct {
	doer      Doer
	timeout   time.Duration
	cache     cache.Cache
	cacheTTL  time.Duration
	userAgent string
}

type ClientOpts struct {
	HTTPClient Doer
	Timeout    time.Duration
	Cache      cache.Cache
	CacheTTL   time.Duration
	UserAgent  string
}

func NewClient(opts ClientOpts) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(opts.Timeout)
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		doer:      opts.HTTPClient,
		timeout:   opts.Timeout,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		userAgent: opts.UserAgent,
	}
}

// NewHTTPClient returns an *http.Client with a pooled transport shared by every adapter.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// GetJSON issues one GET to endpoint?params and decodes the body into out.
// Only bodies that decode successfully are cached.
func (c *Client) GetJSON(ctx context.Context, op, endpoint string, params url.Values, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return InvalidInput(op, "bad endpoint %q: %v", endpoint, err)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	key := u.String()

	body, hit := c.lookup(ctx, key)
	if !hit {
		body, err = c.fetch(ctx, op, key)
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return Malformed(op, fmt.Errorf("decode response: %w", err))
	}

	if !hit {
		c.store(ctx, key, body)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, op, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, InvalidInput(op, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		slog.Warn("UPSTREAM: Request failed", "op", op, "error", err, "elapsed", time.Since(start))
		return nil, Unavailable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		slog.Warn("UPSTREAM: Non-2xx response", "op", op, "status", resp.StatusCode)
		return nil, &Error{
			Kind:   KindUpstreamUnavailable,
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Unavailable(op, fmt.Errorf("read body: %w", err))
	}

	slog.Debug("UPSTREAM: Response received", "op", op, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

func (c *Client) lookup(ctx context.Context, key string) ([]byte, bool) {
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("UPSTREAM: Cache read failed", "error", err)
		return nil, false
	}
	return body, ok
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
		slog.Warn("UPSTREAM: Cache write failed", "error", err)
	}
}
