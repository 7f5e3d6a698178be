// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a structured error response from the backend. Callers
// use errors.As to extract it:
//
//	var apiErr *api.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusNotFound { ... }
//	}
//
// Transport-level failures (connection refused, timeout) are never
// wrapped in APIError — they propagate as plain errors, and in
// particular never trigger the token refresh path.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
	// Code is the machine-readable error code when the backend sends
	// one (e.g., "token_not_valid").
	Code string `json:"code"`
	// Detail is the human-readable error description.
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Code, e.Detail)
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Detail)
}

// IsStatus reports whether err carries an *APIError with the given
// HTTP status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}

// IsUnauthorized reports whether err is a 401 from the backend. After
// the client's single refresh-and-retry, a surviving 401 means the
// session is gone for good.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
