// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Admin-surface endpoints: user accounts, request types, and approval
// levels. The server enforces the admin role on every one of these;
// the client additionally gates the commands so a non-admin fails fast
// without a round trip.

// ListUsers fetches user accounts.
func (c *Client) ListUsers(ctx context.Context, options ListOptions) (*List[User], error) {
	body, err := c.do(ctx, http.MethodGet, "/api/users/", options.query(), nil)
	if err != nil {
		return nil, err
	}
	var list List[User]
	if err := decode(body, &list, "user list"); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateUser creates a user account.
func (c *Client) CreateUser(ctx context.Context, input UserInput) (*User, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/users/", nil, input)
	if err != nil {
		return nil, err
	}
	var user User
	if err := decode(body, &user, "user create"); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates a user account.
func (c *Client) UpdateUser(ctx context.Context, id string, input UserInput) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("api: user id is required")
	}
	body, err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/", nil, input)
	if err != nil {
		return nil, err
	}
	var user User
	if err := decode(body, &user, "user update"); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("api: user id is required")
	}
	_, err := c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id)+"/", nil, nil)
	return err
}

// ListRequestTypes fetches the configured request categories.
func (c *Client) ListRequestTypes(ctx context.Context) ([]RequestType, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/request-types/", nil, nil)
	if err != nil {
		return nil, err
	}
	var types []RequestType
	if err := decode(body, &types, "request type list"); err != nil {
		return nil, err
	}
	return types, nil
}

// CreateRequestType creates a request category.
func (c *Client) CreateRequestType(ctx context.Context, input RequestType) (*RequestType, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/request-types/", nil, input)
	if err != nil {
		return nil, err
	}
	var requestType RequestType
	if err := decode(body, &requestType, "request type create"); err != nil {
		return nil, err
	}
	return &requestType, nil
}

// UpdateRequestType updates a request category.
func (c *Client) UpdateRequestType(ctx context.Context, id string, input RequestType) (*RequestType, error) {
	if id == "" {
		return nil, fmt.Errorf("api: request type id is required")
	}
	body, err := c.do(ctx, http.MethodPut, "/api/request-types/"+url.PathEscape(id)+"/", nil, input)
	if err != nil {
		return nil, err
	}
	var requestType RequestType
	if err := decode(body, &requestType, "request type update"); err != nil {
		return nil, err
	}
	return &requestType, nil
}

// DeleteRequestType removes a request category.
func (c *Client) DeleteRequestType(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("api: request type id is required")
	}
	_, err := c.do(ctx, http.MethodDelete, "/api/request-types/"+url.PathEscape(id)+"/", nil, nil)
	return err
}

// ListApprovalLevels fetches the approval chain configuration, in
// level order.
func (c *Client) ListApprovalLevels(ctx context.Context) ([]ApprovalLevel, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/approval-levels/", nil, nil)
	if err != nil {
		return nil, err
	}
	var levels []ApprovalLevel
	if err := decode(body, &levels, "approval level list"); err != nil {
		return nil, err
	}
	return levels, nil
}

// CreateApprovalLevel adds a step to the approval chain.
func (c *Client) CreateApprovalLevel(ctx context.Context, input ApprovalLevel) (*ApprovalLevel, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/approval-levels/", nil, input)
	if err != nil {
		return nil, err
	}
	var level ApprovalLevel
	if err := decode(body, &level, "approval level create"); err != nil {
		return nil, err
	}
	return &level, nil
}

// UpdateApprovalLevel updates a step in the approval chain.
func (c *Client) UpdateApprovalLevel(ctx context.Context, id string, input ApprovalLevel) (*ApprovalLevel, error) {
	if id == "" {
		return nil, fmt.Errorf("api: approval level id is required")
	}
	body, err := c.do(ctx, http.MethodPut, "/api/approval-levels/"+url.PathEscape(id)+"/", nil, input)
	if err != nil {
		return nil, err
	}
	var level ApprovalLevel
	if err := decode(body, &level, "approval level update"); err != nil {
		return nil, err
	}
	return &level, nil
}

// DeleteApprovalLevel removes a step from the approval chain.
func (c *Client) DeleteApprovalLevel(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("api: approval level id is required")
	}
	_, err := c.do(ctx, http.MethodDelete, "/api/approval-levels/"+url.PathEscape(id)+"/", nil, nil)
	return err
}
