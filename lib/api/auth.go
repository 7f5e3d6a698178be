// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"

	"github.com/Philbert250/Procure-to-Pay/lib/identity"
)

// TokenPair is the credential pair minted by the token endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResponse is the token endpoint's success payload: both tokens
// plus the user object, already in canonical shape.
type LoginResponse struct {
	TokenPair
	User identity.Payload `json:"user"`
}

// IssueTokens exchanges credentials for a token pair and the user's
// identity payload. This is the only endpoint that sees the password.
// Errors propagate unchanged — bad credentials surface to the login
// form verbatim, and no session state is touched on failure.
//
// The call deliberately bypasses the refresh interceptor: it is
// unauthenticated, and a 401 here means "wrong password", not
// "expired session".
func (c *Client) IssueTokens(ctx context.Context, username, password string) (*LoginResponse, error) {
	body, err := c.send(ctx, http.MethodPost, "/api/token/", nil, map[string]string{
		"username": username,
		"password": password,
	}, "")
	if err != nil {
		return nil, err
	}

	var response LoginResponse
	if err := decode(body, &response, "token"); err != nil {
		return nil, err
	}

	c.logger.Info("issued tokens", "username", username)
	return &response, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token.
// Like IssueTokens, this bypasses the interceptor — a 401 here means
// the refresh token itself is dead, which the caller escalates to
// session expiry.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	body, err := c.send(ctx, http.MethodPost, "/api/token/refresh/", nil, map[string]string{
		"refresh": refreshToken,
	}, "")
	if err != nil {
		return "", err
	}

	var response struct {
		Access string `json:"access"`
	}
	if err := decode(body, &response, "token refresh"); err != nil {
		return "", err
	}
	return response.Access, nil
}

// WhoAmI fetches the current user's raw payload. Used by session
// restore to verify the persisted access token and obtain a canonical
// identity. The payload may lack a role (superuser accounts created
// before role assignment), so callers normalize it before use.
func (c *Client) WhoAmI(ctx context.Context) (identity.Payload, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/auth/me/", nil, nil)
	if err != nil {
		return identity.Payload{}, err
	}

	var payload identity.Payload
	if err := decode(body, &payload, "who-am-I"); err != nil {
		return identity.Payload{}, err
	}
	return payload, nil
}

// ProfileUpdate holds the partial fields of a profile edit. Nil
// pointers are omitted from the request so the server leaves those
// fields untouched.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UpdateProfile submits a partial profile edit and returns the updated
// payload. The session store's identity is only overwritten after this
// succeeds; tokens are never touched.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (identity.Payload, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/auth/profile/", nil, update)
	if err != nil {
		return identity.Payload{}, err
	}

	var payload identity.Payload
	if err := decode(body, &payload, "profile"); err != nil {
		return identity.Payload{}, err
	}
	return payload, nil
}
