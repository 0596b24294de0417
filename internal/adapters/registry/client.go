// Package registry implements the ManifestSource port against an npm-compatible registry.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/mpm/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const (
	acceptHeader   = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"
	defaultBackoff = 250 * time.Millisecond
	maxBodySize    = 64 << 20
)

// Client implements ports.ManifestSource.
//
// Manifests are memoized for the life of the process, concurrent requests for one
// name share a single fetch, and fetched documents are cached on disk for cacheTTL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger

	cacheDir string
	cacheTTL time.Duration
	attempts int
	timeout  time.Duration
	backoff  time.Duration
	now      func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	memo  map[string]domain.ResolvedManifest
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBackoff sets the delay before the first retry.
func WithBackoff(d time.Duration) Option {
	return func(cl *Client) { cl.backoff = d }
}

// WithClock replaces the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

// NewClient creates a Client configured from settings.
func NewClient(settings *domain.Settings, logger ports.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(settings.Registry, "/"),
		httpClient: &http.Client{},
		logger:     logger,
		cacheDir:   settings.CacheDir,
		cacheTTL:   settings.RegistryCacheTTL(),
		attempts:   settings.FetchRetries,
		timeout:    settings.FetchTimeout,
		backoff:    defaultBackoff,
		now:        time.Now,
		memo:       make(map[string]domain.ResolvedManifest),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchManifest returns every published version of name.
func (c *Client) FetchManifest(ctx context.Context, name string) (domain.ResolvedManifest, error) {
	if m, ok := c.memoized(name); ok {
		return m, nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		if m, ok := c.memoized(name); ok {
			return m, nil
		}

		if m, ok := c.loadFromCache(name); ok {
			c.remember(name, m)
			return m, nil
		}

		m, err := c.fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		c.remember(name, m)
		if err := c.saveToCache(name, m); err != nil && c.logger != nil {
			c.logger.Debug("registry cache write failed", "package", name, "error", err.Error())
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	m, _ := v.(domain.ResolvedManifest)
	return m, nil
}

func (c *Client) memoized(name string) (domain.ResolvedManifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.memo[name]
	return m, ok
}

func (c *Client) remember(name string, m domain.ResolvedManifest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo[name] = m
}

// packageURL builds the document URL. Scoped names keep their "@" and escape the "/".
func (c *Client) packageURL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

func (c *Client) fetch(ctx context.Context, name string) (domain.ResolvedManifest, error) {
	var manifest domain.ResolvedManifest
	err := retry(ctx, c.attempts, c.backoff, func(attempt int) error {
		m, err := c.fetchOnce(ctx, name)
		if err != nil {
			return err
		}
		if attempt > 1 && c.logger != nil {
			c.logger.Debug("registry fetch succeeded after retry", "package", name, "attempt", attempt)
		}
		manifest = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func (c *Client) fetchOnce(ctx context.Context, name string) (domain.ResolvedManifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, networkErr(name, err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.packageURL(name), http.NoBody)
	if err != nil {
		return nil, networkErr(name, err)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, networkErr(name, ctx.Err())
		}
		return nil, retryable(networkErr(name, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "fetch manifest"), "package", name)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, retryable(statusErr(name, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, statusErr(name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, networkErr(name, ctx.Err())
		}
		return nil, retryable(networkErr(name, err))
	}

	var doc packument
	if err := json.Unmarshal(body, &doc); err != nil {
		parseErr := zerr.With(zerr.Wrap(domain.ErrRegistryParseFailed, "decode manifest"), "package", name)
		return nil, zerr.With(parseErr, "cause", err.Error())
	}
	return doc.toManifest(), nil
}

func networkErr(name string, cause error) error {
	err := zerr.With(zerr.Wrap(domain.ErrNetwork, "fetch manifest"), "package", name)
	if errors.Is(cause, context.DeadlineExceeded) {
		err = zerr.With(err, "timeout", true)
	}
	return zerr.With(err, "cause", cause.Error())
}

func statusErr(name string, status int) error {
	err := zerr.With(zerr.Wrap(domain.ErrNetwork, "fetch manifest"), "package", name)
	return zerr.With(err, "status_code", status)
}
