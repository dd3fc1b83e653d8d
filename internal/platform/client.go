package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/crewdeck/crewctl/internal/errors"
	"github.com/crewdeck/crewctl/internal/log"
)

// AuthErrorHandler is invoked when a remote call signals invalid or expired
// credentials. It fires exactly once per failing call, before the error is
// returned to the caller.
type AuthErrorHandler func()

// Client is the Crewdeck platform API client.
//
// The captured token is immutable: a token change produces a new Client via
// WithToken rather than mutating an existing one, so a request issued under
// an old identity never completes under a newer one's context.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	token       string
	onAuthError AuthErrorHandler
	logger      *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAuthErrorHandler registers the handler invoked on authorization failures.
func WithAuthErrorHandler(handler AuthErrorHandler) Option {
	return func(c *Client) {
		c.onAuthError = handler
	}
}

// WithLogger sets the structured logger used for request diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new platform API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that sends the given bearer token.
// The receiver is left untouched.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Token returns the bearer token the client was constructed with.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the base address of the remote service.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an HTTP request with authentication. Failures to reach
// the server surface as transport errors; the response is handed to
// parseResponse for status mapping.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Debug("transport failure", "method", method, "path", path)
		return nil, errors.NewTransportError(err)
	}

	return resp, nil
}

// errorResponse represents an API error response body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// parseResponse maps the response status and decodes the body into target.
//
// 401 and 403 become authorization failures and fire the auth-error handler
// exactly once; other non-2xx statuses become server failures carrying the
// structured message when one is present.
func (c *Client) parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		if c.onAuthError != nil {
			c.onAuthError()
		}
		return errors.NewUnauthorizedError(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				return errors.NewServerError(resp.StatusCode, errResp.Error)
			}
			if errResp.Message != "" {
				return errors.NewServerError(resp.StatusCode, errResp.Message)
			}
		}

		return errors.NewServerError(resp.StatusCode, string(bytes.TrimSpace(body)))
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return errors.Wrap(errors.ErrCodeDecodeFailed, "decode response", err)
		}
	}

	return nil
}

// get issues a GET request and decodes the response into target.
func (c *Client) get(ctx context.Context, path string, query url.Values, target any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, target)
}

// post issues a POST request and decodes the response into target.
func (c *Client) post(ctx context.Context, path string, body, target any) error {
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, target)
}

// patch issues a PATCH request and decodes the response into target.
func (c *Client) patch(ctx context.Context, path string, body, target any) error {
	resp, err := c.doRequest(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, target)
}

// delete issues a DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, nil)
}
