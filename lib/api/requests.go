// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListRequests fetches purchase requests. Which requests are visible
// is decided server-side by role: staff see their own, approvers and
// finance see their queue, admins see everything.
func (c *Client) ListRequests(ctx context.Context, options ListOptions) (*List[PurchaseRequest], error) {
	body, err := c.do(ctx, http.MethodGet, "/api/requests/", options.query(), nil)
	if err != nil {
		return nil, err
	}
	var list List[PurchaseRequest]
	if err := decode(body, &list, "request list"); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetRequest fetches a single purchase request by ID.
func (c *Client) GetRequest(ctx context.Context, id string) (*PurchaseRequest, error) {
	if id == "" {
		return nil, fmt.Errorf("api: request id is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/api/requests/"+url.PathEscape(id)+"/", nil, nil)
	if err != nil {
		return nil, err
	}
	var request PurchaseRequest
	if err := decode(body, &request, "request"); err != nil {
		return nil, err
	}
	return &request, nil
}

// CreateRequest creates a purchase request in draft state.
func (c *Client) CreateRequest(ctx context.Context, input RequestInput) (*PurchaseRequest, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/requests/", nil, input)
	if err != nil {
		return nil, err
	}
	var request PurchaseRequest
	if err := decode(body, &request, "request create"); err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateRequest replaces the writable fields of a draft request.
func (c *Client) UpdateRequest(ctx context.Context, id string, input RequestInput) (*PurchaseRequest, error) {
	if id == "" {
		return nil, fmt.Errorf("api: request id is required")
	}
	body, err := c.do(ctx, http.MethodPut, "/api/requests/"+url.PathEscape(id)+"/", nil, input)
	if err != nil {
		return nil, err
	}
	var request PurchaseRequest
	if err := decode(body, &request, "request update"); err != nil {
		return nil, err
	}
	return &request, nil
}

// SubmitRequest moves a draft into the approval chain.
func (c *Client) SubmitRequest(ctx context.Context, id string) (*PurchaseRequest, error) {
	if id == "" {
		return nil, fmt.Errorf("api: request id is required")
	}
	body, err := c.do(ctx, http.MethodPost, "/api/requests/"+url.PathEscape(id)+"/submit/", nil, nil)
	if err != nil {
		return nil, err
	}
	var request PurchaseRequest
	if err := decode(body, &request, "request submit"); err != nil {
		return nil, err
	}
	return &request, nil
}

// DeleteRequest deletes a request. The server rejects deletion once a
// request has entered the approval chain.
func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("api: request id is required")
	}
	_, err := c.do(ctx, http.MethodDelete, "/api/requests/"+url.PathEscape(id)+"/", nil, nil)
	return err
}
