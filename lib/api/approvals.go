// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// PendingApprovals lists requests waiting on the caller's approval
// level. Only meaningful for approver roles (and superusers); others
// get an empty list or a 403 depending on server policy.
func (c *Client) PendingApprovals(ctx context.Context, options ListOptions) (*List[PurchaseRequest], error) {
	body, err := c.do(ctx, http.MethodGet, "/api/approvals/pending/", options.query(), nil)
	if err != nil {
		return nil, err
	}
	var list List[PurchaseRequest]
	if err := decode(body, &list, "pending approvals"); err != nil {
		return nil, err
	}
	return &list, nil
}

// ApproveRequest records an approval at the caller's level. The server
// advances the request to the next level, or to approved when this was
// the final level.
func (c *Client) ApproveRequest(ctx context.Context, requestID, comment string) (*PurchaseRequest, error) {
	return c.decide(ctx, requestID, "approve", comment)
}

// RejectRequest records a rejection. Rejection at any level is final.
func (c *Client) RejectRequest(ctx context.Context, requestID, comment string) (*PurchaseRequest, error) {
	return c.decide(ctx, requestID, "reject", comment)
}

func (c *Client) decide(ctx context.Context, requestID, decision, comment string) (*PurchaseRequest, error) {
	if requestID == "" {
		return nil, fmt.Errorf("api: request id is required")
	}
	payload := map[string]string{}
	if comment != "" {
		payload["comment"] = comment
	}
	path := "/api/requests/" + url.PathEscape(requestID) + "/" + decision + "/"
	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	var request PurchaseRequest
	if err := decode(body, &request, decision); err != nil {
		return nil, err
	}
	return &request, nil
}

// ApprovalHistory lists the decisions recorded against a request, in
// chain order.
func (c *Client) ApprovalHistory(ctx context.Context, requestID string) ([]Approval, error) {
	if requestID == "" {
		return nil, fmt.Errorf("api: request id is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/api/requests/"+url.PathEscape(requestID)+"/approvals/", nil, nil)
	if err != nil {
		return nil, err
	}
	var history []Approval
	if err := decode(body, &history, "approval history"); err != nil {
		return nil, err
	}
	return history, nil
}
