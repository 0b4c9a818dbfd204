package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultAPIVersion is sent as x-api-version on every request.
const DefaultAPIVersion = "1.1-rev2"

// ErrUnauthorized is returned when the platform rejects the credentials.
var ErrUnauthorized = errors.New("unauthorized")

// CatalogClient is the read-only view of the backup platform the SLA engine
// needs.
type CatalogClient interface {
	// ListJobs returns all jobs whose type is in kinds. An empty kinds slice
	// returns every job.
	ListJobs(ctx context.Context, kinds []string) ([]JobInfo, error)
	// GetJob returns the job detail, or nil when the job no longer exists.
	GetJob(ctx context.Context, id string) (*JobInfo, error)
	// ListRestorePoints returns the job's restore points sorted by completion
	// time, newest first, then by machine name. Callers rely on this order for
	// deterministic tie-breaking.
	ListRestorePoints(ctx context.Context, jobID string) ([]RestorePointInfo, error)
	// Ping checks connectivity and credentials.
	Ping(ctx context.Context) error
	BaseURL() string
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	BaseURL            string
	Username           string
	Password           string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
	// RequestsPerSecond paces calls to the platform. <= 0 disables pacing.
	RequestsPerSecond float64
	APIVersion        string
	PageSize          int
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// DefaultClient implements CatalogClient over the platform's REST API.
type DefaultClient struct {
	http    *http.Client
	config  ClientConfig
	limiter *rate.Limiter

	mu    sync.Mutex
	token string
}

// NewDefaultClient constructs a DefaultClient from the given config.
// Returns an error if BaseURL is empty.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 200
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config:  cfg,
		limiter: limiter,
	}, nil
}

// BaseURL returns the configured base URL of the backup server.
func (c *DefaultClient) BaseURL() string {
	return c.config.BaseURL
}

func (c *DefaultClient) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}

// login exchanges the configured credentials for a bearer token.
func (c *DefaultClient) login(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.config.Username)
	form.Set("password", c.config.Password)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(endpointToken), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-version", c.config.APIVersion)

	body, err := c.do(req)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusBadRequest) {
			return "", fmt.Errorf("login as %q: %w", c.config.Username, ErrUnauthorized)
		}
		return "", fmt.Errorf("login: %w", err)
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("login decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("login: empty access token")
	}
	return tok.AccessToken, nil
}

// bearer returns the cached token, logging in on first use.
func (c *DefaultClient) bearer(ctx context.Context, refresh bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && !refresh {
		return c.token, nil
	}
	tok, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	c.token = tok
	return tok, nil
}

// doGet performs an authenticated GET request to path (relative to BaseURL).
// A 401 response triggers one token refresh and retry.
func (c *DefaultClient) doGet(ctx context.Context, path string) ([]byte, error) {
	body, err := c.getOnce(ctx, path, false)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		return c.getOnce(ctx, path, true)
	}
	return body, err
}

func (c *DefaultClient) getOnce(ctx context.Context, path string, refresh bool) ([]byte, error) {
	tok, err := c.bearer(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-version", c.config.APIVersion)
	req.Header.Set("Authorization", "Bearer "+tok)

	return c.do(req)
}

// do sends req and returns the body, or a *StatusError on non-2xx status.
func (c *DefaultClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	const maxResponseBytes = 32 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d MB limit", maxResponseBytes/(1024*1024))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(body, 200)}
	}

	return body, nil
}

// Ping checks connectivity and credentials by fetching server info with a
// 5s timeout. A server info body that does not decode is an error too.
func (c *DefaultClient) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.GetServerInfo(pingCtx)
	return err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
