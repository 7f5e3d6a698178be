// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity defines the authenticated principal and the closed
// role enumeration, plus the single normalization step that turns raw
// API payloads into canonical identities. Internal code never branches
// on raw role strings — everything past this boundary uses Role values.
package identity

import "fmt"

// Identity is the authenticated principal: profile data, canonical
// role, and the superuser override. Created on login or session
// restore, mutated only by profile updates, destroyed on logout.
type Identity struct {
	// ID is the server-assigned stable identifier.
	ID string `json:"id"`

	// Username is the login name.
	Username string `json:"username"`

	// Email is the contact address.
	Email string `json:"email"`

	// Role is the canonical role. Never empty for a normalized identity.
	Role Role `json:"role"`

	// RoleDisplay is the human-readable role label. Derived from Role
	// when the server payload omits it; never authoritative.
	RoleDisplay string `json:"role_display"`

	// IsSuperuser grants the union of every role-scoped feature
	// regardless of Role.
	IsSuperuser bool `json:"is_superuser"`
}

// Payload is the raw user object as the API emits it. The who-am-I
// endpoint may omit the role entirely and the approver roles arrive in
// either separator spelling, so payloads pass through Normalize before
// anything else sees them. Login responses are already canonical but
// are normalized anyway — the operation is idempotent.
type Payload struct {
	ID          any    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	RoleDisplay string `json:"role_display"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Normalize converts a wire payload into a canonical Identity.
//
// The invariants, in order:
//   - a payload with no role but is_superuser set becomes an
//     administrator ("the superuser account predates role assignment"
//     is a real upstream state),
//   - a payload with no role and no superuser flag is rejected,
//   - an unrecognized role string is rejected,
//   - a missing role_display is derived from the canonical role.
func Normalize(payload Payload) (Identity, error) {
	normalized := Identity{
		ID:          stringifyID(payload.ID),
		Username:    payload.Username,
		Email:       payload.Email,
		RoleDisplay: payload.RoleDisplay,
		IsSuperuser: payload.IsSuperuser,
	}

	switch {
	case payload.Role == "" && payload.IsSuperuser:
		normalized.Role = RoleAdmin
		normalized.RoleDisplay = "Administrator"
	case payload.Role == "":
		return Identity{}, fmt.Errorf("identity: user %q has no role", payload.Username)
	default:
		role, ok := ParseRole(payload.Role)
		if !ok {
			return Identity{}, fmt.Errorf("identity: user %q has unknown role %q", payload.Username, payload.Role)
		}
		normalized.Role = role
	}

	if normalized.RoleDisplay == "" {
		normalized.RoleDisplay = normalized.Role.Display()
	}

	return normalized, nil
}

// stringifyID renders the wire ID as a string. The API is inconsistent
// here: some deployments emit numeric IDs, others UUID strings. The
// client treats IDs as opaque, so both collapse to their string form.
func stringifyID(id any) string {
	switch value := id.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		// encoding/json decodes JSON numbers into float64. IDs are
		// integral, so drop the fraction.
		return fmt.Sprintf("%.0f", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
