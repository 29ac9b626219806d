package client

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

	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeader tags every outgoing request.
const RequestIDHeader = "X-Request-Id"

const (
	pathRegister       = "/api/auth/register"
	pathActivate       = "/api/auth/activate"
	pathReset          = "/api/auth/reset"
	pathUpdateUsername = "/api/auth/update/username"
	pathUpdatePassword = "/api/auth/update/password"
	pathLogin          = "/api/auth/login"
	pathMe             = "/api/auth/me"
	pathPeers          = "/api/auth/get-peers"
	pathPeer           = "/api/auth/get/"
)

// HTTPClient implements Client over the JSON REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   func() string
	log     logging.Logger
}

type HTTPOption func(*HTTPClient)

// WithTokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
func WithTokenSource(fn func() string) HTTPOption {
	return func(c *HTTPClient) { c.token = fn }
}

func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.http = hc }
}

func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

func WithLogger(l logging.Logger) HTTPOption {
	return func(c *HTTPClient) { c.log = l.With("module", "api") }
}

// NewHTTPClient validates baseURL and returns a client for it.
func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse api url: unsupported scheme %q", u.Scheme)
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		token:   func() string { return "" },
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) Register(ctx context.Context, payload any) (*models.AuthResult, error) {
	return c.auth(ctx, http.MethodPost, pathRegister, payload)
}

func (c *HTTPClient) Activate(ctx context.Context, payload any) (*models.AuthResult, error) {
	return c.auth(ctx, http.MethodPost, pathActivate, payload)
}

func (c *HTTPClient) Reset(ctx context.Context, payload any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, pathReset, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateUsername(ctx context.Context, payload any) (*models.AuthResult, error) {
	return c.auth(ctx, http.MethodPut, pathUpdateUsername, payload)
}

func (c *HTTPClient) UpdatePassword(ctx context.Context, payload any) (*models.AuthResult, error) {
	return c.auth(ctx, http.MethodPut, pathUpdatePassword, payload)
}

func (c *HTTPClient) Login(ctx context.Context, payload any) (*models.AuthResult, error) {
	return c.auth(ctx, http.MethodPost, pathLogin, payload)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.AuthResult, error) {
	return c.auth(ctx, http.MethodGet, pathMe, nil)
}

func (c *HTTPClient) GetPeers(ctx context.Context) ([]models.Peer, error) {
	var out []models.Peer
	if err := c.do(ctx, http.MethodGet, pathPeers, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetPeer(ctx context.Context, id string) (*models.Peer, error) {
	if id == "" {
		return nil, fmt.Errorf("get peer: %w", ErrNotFound)
	}
	var out models.Peer
	if err := c.do(ctx, http.MethodGet, pathPeer+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) auth(ctx context.Context, method, path string, payload any) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.do(ctx, method, path, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "err", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode, "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func mapStatus(status int, body []byte) error {
	msg := errorMessage(body)
	var sentinel error
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status >= 500:
		sentinel = ErrUnavailable
	default:
		return &APIError{Status: status, Message: msg}
	}
	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// errorMessage pulls "message" or "error" out of a JSON error body.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return strings.TrimSpace(string(body))
		}
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

var _ Client = (*HTTPClient)(nil)
