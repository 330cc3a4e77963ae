package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modpanel/cli/internal/credentials"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/version"
)

const defaultTimeout = 30 * time.Second

// NewClient creates a new API client with the provided configuration
func NewClient(config ClientConfig) (*Client, error) {
	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, errors.New("base URL is required")
	}

	authMode := config.AuthMode
	switch authMode {
	case "":
		authMode = AuthModeBearer
	case AuthModeBearer, AuthModeCookie:
	default:
		return nil, fmt.Errorf("unknown auth mode %q", authMode)
	}

	store := config.Credentials
	if store == nil {
		store = credentials.NewMemoryStore()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	} else if httpClient.Jar != nil {
		// Cookies are managed through the credential store only
		dup := *httpClient
		dup.Jar = nil
		httpClient = &dup
	}

	return &Client{
		BaseURL:     NormalizeBaseURL(config.BaseURL),
		AgentName:   config.AgentName,
		AuthMode:    authMode,
		credentials: store,
		httpClient:  httpClient,
	}, nil
}

// NormalizeBaseURL adds https:// when no protocol is given and trims trailing slashes.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// Credentials returns the store the client reads the credential from.
func (c *Client) Credentials() credentials.Store {
	return c.credentials
}

// OnAuthRejected registers fn to be called whenever a response has status 401
// or 403. The error is still returned to the caller.
func (c *Client) OnAuthRejected(fn func(*Error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Client) notifyAuthRejected(apiErr *Error) {
	c.mu.RLock()
	observers := append([]func(*Error){}, c.observers...)
	c.mu.RUnlock()

	for _, fn := range observers {
		fn(apiErr)
	}
}

// Request issues method against path and returns the parsed response body.
//
// JSON responses are decoded (nil when empty or undecodable), other bodies are
// returned as map[string]any{"text": body}. Any non-2xx status yields an *Error;
// network failures yield an *Error of KindTransport.
func (c *Client) Request(ctx context.Context, method, path string, body any) (any, error) {
	requestURL := c.buildURL(path)

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.attachCredential(req)

	logger.Debug("%s %s (request %s)", method, requestURL, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("request failed: %v", err),
			Err:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if c.AuthMode == AuthModeCookie {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			c.credentials.SetCookies(req.URL, cookies)
		}
	}

	data := parseBody(resp)

	logger.Debug("%s %s -> %d (request %s)", method, requestURL, resp.StatusCode, requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newStatusError(resp.StatusCode, data)
		if apiErr.Kind == KindAuthRejection {
			c.notifyAuthRejected(apiErr)
		}
		return nil, apiErr
	}

	return data, nil
}

// RequestWithFallback tries primary and, if that fails with an *Error of any
// kind, repeats the same request once against fallback and returns its outcome
// verbatim. An empty fallback disables the second attempt.
func (c *Client) RequestWithFallback(ctx context.Context, primary, fallback, method string, body any) (any, error) {
	data, err := c.Request(ctx, method, primary, body)
	if err == nil || fallback == "" {
		return data, err
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) || ctx.Err() != nil {
		return nil, err
	}

	logger.Debug("%s %s failed (%v), retrying legacy path %s", method, primary, err, fallback)
	return c.Request(ctx, method, fallback, body)
}

// attachCredential reads the store once: a token is sent as a bearer header,
// otherwise cookie-mode deployments send the stored session cookies.
func (c *Client) attachCredential(req *http.Request) {
	if token, ok := c.credentials.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}

	if c.AuthMode == AuthModeCookie {
		for _, cookie := range c.credentials.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
}

// buildURL constructs the full URL for the request
func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

func (c *Client) userAgent() string {
	if c.AgentName != "" {
		return c.AgentName
	}
	return version.UserAgent()
}

// parseBody never fails: read and decode errors collapse to nil.
func parseBody(resp *http.Response) any {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil
		}
		return data
	}

	if len(raw) == 0 {
		return nil
	}
	return map[string]any{"text": string(raw)}
}

// isJSON matches application/json anywhere in the header, parameters
// included. Structured suffixes such as +json are read as text.
func isJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}
