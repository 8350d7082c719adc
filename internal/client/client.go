// ABOUTME: HTTP client for the SKU mapping backend API
// ABOUTME: Attaches bearer auth and refreshes near-expiry tokens before each call

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mappingdesk/skumap/internal/auth"
	"github.com/mappingdesk/skumap/internal/token"
)

// refreshLeeway is how close to expiry a token may get before the wrapper
// refreshes it ahead of an outbound request
const refreshLeeway = 60 * time.Second

// Client is the API client for the SKU mapping backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *auth.Manager
}

// New creates a new API client. session may be nil for unauthenticated
// calls.
func New(baseURL string, session *auth.Manager) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: session,
	}
}

// APIError represents a non-2xx response from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorBody is the shape the backend uses for error payloads; any of the
// fields may carry the message
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

// authorize attaches the Authorization header, refreshing the access token
// first when it expires within the leeway window. Decode and refresh
// failures are logged and swallowed; the request proceeds with the stale
// token and the backend's 401 surfaces as a normal HTTP error.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.session == nil {
		return
	}

	sess := c.session.Session()
	if sess.AccessToken == "" {
		return
	}
	accessToken := sess.AccessToken

	claims, err := token.Decode(accessToken)
	if err != nil {
		slog.Warn("could not decode access token before request", "error", err)
	} else if claims.ExpiresWithin(refreshLeeway) && sess.RefreshToken != "" {
		if err := c.session.TryRefresh(ctx); err != nil {
			slog.Warn("pre-request token refresh failed", "error", err)
		} else if fresh := c.session.Session().AccessToken; fresh != "" {
			accessToken = fresh
		}
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
}

// get issues an authenticated GET and decodes the JSON response into out
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(ctx, req, out)
}

// postJSON issues an authenticated POST with a JSON body
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

// putJSON issues an authenticated PUT with a JSON body
func (c *Client) putJSON(ctx context.Context, path string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(ctx, req, out)
}

// do executes the request with auth attached and decodes the response
func (c *Client) do(ctx context.Context, req *http.Request, out interface{}) error {
	c.authorize(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse extracts a best-effort message from an error body,
// falling back to the status code
func (c *Client) handleErrorResponse(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
	}

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		for _, msg := range []string{body.Message, body.Error, body.Detail} {
			if msg != "" {
				apiErr.Message = msg
				break
			}
		}
	}
	return apiErr
}
