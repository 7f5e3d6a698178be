// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the REST client for the procurement backend. It owns
// bearer-token attachment and the silent refresh-and-retry on expiry;
// everything above it (commands, the dashboard) sees only final
// responses and final errors, never the intermediate 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Philbert250/Procure-to-Pay/lib/netutil"
)

// TokenStore is the client's view of the session: read the current
// tokens, persist a refreshed access token, and tear the session down
// when refresh is no longer possible. Implemented by session.Store.
//
// All methods may be called from whatever goroutine issued the request;
// implementations synchronize internally.
type TokenStore interface {
	// AccessToken returns the current access token, or "" when the
	// session is anonymous (requests then go out unauthenticated).
	AccessToken() string
	// RefreshToken returns the current refresh token, or "".
	RefreshToken() string
	// SetAccessToken persists a freshly minted access token without
	// touching the refresh token or identity.
	SetAccessToken(token string) error
	// Expire tears the session down: all persisted state is cleared
	// as a unit and the application is sent back to the login entry
	// point. Equivalent to logout plus redirect.
	Expire()
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the backend base URL (e.g., "https://procure.example.com").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
	// Tokens supplies bearer tokens and receives refreshed ones. If
	// nil, all requests go out unauthenticated and 401s propagate
	// directly — useful for the login call itself and for tests.
	Tokens TokenStore
}

// Client talks to the procurement backend. It is safe for concurrent
// use; concurrent requests that hit 401 around the same moment each
// refresh independently (the refresh endpoint tolerates this, and the
// alternative is shared retry state on an otherwise per-call path).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tokens     TokenStore
}

// NewClient creates a Client for the given backend.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		tokens:     config.Tokens,
	}, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// CloseIdleConnections closes idle pooled connections. Call after a
// network disruption so subsequent requests dial fresh.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// do performs an authenticated request with the single-retry refresh
// contract:
//
//   - a non-401 outcome (success, other HTTP error, transport error)
//     is returned as-is on any attempt;
//   - a 401 on the first attempt triggers exactly one refresh: with no
//     refresh token the session expires and the original 401 is
//     returned; with a refresh token that the server rejects, the
//     session expires and the refresh error is returned; otherwise the
//     new access token is persisted and the request is re-sent;
//   - a 401 on the retry is returned to the caller.
//
// The attempt counter is local to this call — no request object is
// mutated, and concurrent calls do not observe each other.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, requestBody any) ([]byte, error) {
	const maxAttempts = 2

	for attempt := 1; ; attempt++ {
		body, err := c.send(ctx, method, path, query, requestBody, c.bearer())
		if err == nil || !IsUnauthorized(err) || c.tokens == nil || attempt >= maxAttempts {
			return body, err
		}

		refreshToken := c.tokens.RefreshToken()
		if refreshToken == "" {
			c.logger.Warn("access token rejected and no refresh token; session expired",
				"method", method, "path", path)
			c.tokens.Expire()
			return nil, err
		}

		newAccess, refreshErr := c.RefreshAccessToken(ctx, refreshToken)
		if refreshErr != nil {
			c.logger.Warn("token refresh rejected; session expired",
				"method", method, "path", path)
			c.tokens.Expire()
			return nil, refreshErr
		}

		if storeErr := c.tokens.SetAccessToken(newAccess); storeErr != nil {
			return nil, fmt.Errorf("api: persisting refreshed access token: %w", storeErr)
		}
		c.logger.Debug("access token refreshed, retrying request",
			"method", method, "path", path)
	}
}

// bearer returns the Authorization header value for the current access
// token, or "" when the session is anonymous.
func (c *Client) bearer() string {
	if c.tokens == nil {
		return ""
	}
	token := c.tokens.AccessToken()
	if token == "" {
		return ""
	}
	return "Bearer " + token
}

// send performs one HTTP round trip and returns the response body.
// On 2xx, returns the body. On 4xx/5xx, returns the body alongside a
// typed *APIError. Transport failures return a plain wrapped error.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, requestBody any, authorization string) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("api: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("api: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("api: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return responseBody, decodeError(response.StatusCode, responseBody)
}

// sendRaw performs one HTTP round trip with a raw (non-JSON) body,
// used for receipt uploads. Goes through the same refresh contract as
// do only when the reader is replayable, so callers pass a factory.
func (c *Client) sendRaw(ctx context.Context, method, path, contentType string, body io.Reader, extraHeaders http.Header) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create request: %w", err)
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	for key, values := range extraHeaders {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}
	if authorization := c.bearer(); authorization != "" {
		request.Header.Set("Authorization", authorization)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("api: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("api: failed to read response body: %w", err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}
	return responseBody, decodeError(response.StatusCode, responseBody)
}

// decodeError turns an error response body into a typed *APIError.
// The backend emits {"detail": ...} with an optional "code"; non-JSON
// bodies (a proxy's HTML 502 page, say) are preserved verbatim in
// Detail so nothing is lost.
func decodeError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Detail == "" {
		apiErr.Code = ""
		apiErr.Detail = strings.TrimSpace(string(body))
		if apiErr.Detail == "" {
			apiErr.Detail = http.StatusText(statusCode)
		}
	}
	return apiErr
}

// decode unmarshals a response body into out, wrapping parse failures
// with the endpoint for context.
func decode(body []byte, out any, endpoint string) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: failed to parse %s response: %w", endpoint, err)
	}
	return nil
}
