// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/url"
	"strconv"
	"time"
)

// RequestStatus is the lifecycle state of a purchase request as the
// backend reports it. The client renders these; the server owns the
// transitions.
type RequestStatus string

const (
	StatusDraft     RequestStatus = "draft"
	StatusSubmitted RequestStatus = "submitted"
	StatusPending   RequestStatus = "pending_approval"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
)

// PurchaseRequest is a staff purchase request moving through the
// approval chain.
type PurchaseRequest struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	RequestType   string        `json:"request_type"`
	Amount        string        `json:"amount"`
	Currency      string        `json:"currency"`
	Status        RequestStatus `json:"status"`
	CurrentLevel  int           `json:"current_level"`
	RequestedBy   string        `json:"requested_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// RequestInput holds the writable fields of a purchase request.
type RequestInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	RequestType string `json:"request_type"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency,omitempty"`
}

// Approval is one decision in a request's approval history.
type Approval struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request"`
	Level     int       `json:"level"`
	Approver  string    `json:"approver"`
	Decision  string    `json:"decision"`
	Comment   string    `json:"comment"`
	DecidedAt time.Time `json:"decided_at"`
}

// RequestType is an admin-configured category of purchase request.
type RequestType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// ApprovalLevel is one admin-configured step in the approval chain.
type ApprovalLevel struct {
	ID        string `json:"id"`
	Level     int    `json:"level"`
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
}

// User is an account as the admin user list reports it. Role arrives
// as a raw string (either separator spelling) and is normalized by
// display code through identity.ParseRole.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    bool   `json:"is_active"`
}

// UserInput holds the writable fields of a user account.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// Receipt is an uploaded document attached to an approved request.
type Receipt struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request"`
	Filename   string    `json:"filename"`
	Checksum   string    `json:"checksum"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// List is the backend's pagination envelope for collection endpoints.
type List[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// ListOptions narrows a collection fetch. The zero value lists the
// first page at the server's default size.
type ListOptions struct {
	Page     int
	PageSize int
	// Status filters requests by lifecycle state ("" = all).
	Status RequestStatus
	// Mine limits the list to requests created by the caller.
	Mine bool
	// Search is a free-text filter applied server-side.
	Search string
}

// query renders the options as URL query parameters.
func (o ListOptions) query() url.Values {
	values := url.Values{}
	if o.Page > 0 {
		values.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(o.PageSize))
	}
	if o.Status != "" {
		values.Set("status", string(o.Status))
	}
	if o.Mine {
		values.Set("mine", "true")
	}
	if o.Search != "" {
		values.Set("search", o.Search)
	}
	return values
}
