// Package apiclient talks to the fleet REST backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// ErrUnexpectedStatus wraps any non-2xx answer that has no better mapping.
var ErrUnexpectedStatus = errors.New("unexpected backend status")

// TokenReader supplies the bearer token. It only reads the credential
// store; the session is the single writer.
type TokenReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// Client is the HTTP collaborator of the session. It implements
// ports.AuthAPI.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenReader
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenReader enables the Authorization header on Forward.
func WithTokenReader(r TokenReader) Option {
	return func(c *Client) { c.tokens = r }
}

// New returns a Client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{baseURL: u, http: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	Correo   string `json:"correo"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Me calls GET /auth/me with token.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var user domain.User
	if err := c.do(req, &user); err != nil {
		return nil, fmt.Errorf("auth me: %w", err)
	}
	return &user, nil
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, correo, password string) (string, *domain.User, error) {
	body, err := json.Marshal(loginRequest{Correo: correo, Password: password})
	if err != nil {
		return "", nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp loginResponse
	if err := c.do(req, &resp); err != nil {
		return "", nil, fmt.Errorf("auth login: %w", err)
	}
	if resp.Token == "" || resp.User == nil {
		return "", nil, fmt.Errorf("auth login: incomplete response")
	}
	return resp.Token, resp.User, nil
}

// Ping checks that the backend answers GET /health.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("backend health: %w", err)
	}
	return nil
}

// Forward sends an opaque application request to the backend with the
// stored bearer token and returns the raw response. The caller closes the
// body.
func (c *Client) Forward(ctx context.Context, method, path, rawQuery string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = rawQuery
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens.Get(ctx, ports.KeyToken)
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+token)
		case !errors.Is(err, domain.ErrCredentialNotFound):
			return nil, fmt.Errorf("read token: %w", err)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward %s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ ports.AuthAPI = (*Client)(nil)
