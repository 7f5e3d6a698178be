// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "strings"

// Role describes a user role in the procurement workflow. Roles are the
// primary authorization axis: they decide which navigation entries are
// visible and which commands an identity may run. The server enforces
// the same boundaries independently.
type Role string

const (
	// RoleStaff submits purchase requests and tracks their own.
	RoleStaff Role = "staff"
	// RoleApproverLevel1 reviews requests at the first approval level.
	RoleApproverLevel1 Role = "approver_level_1"
	// RoleApproverLevel2 reviews requests escalated past level 1.
	RoleApproverLevel2 Role = "approver_level_2"
	// RoleFinance tracks approved spend.
	RoleFinance Role = "finance"
	// RoleAdmin configures request types, approval levels, and users.
	RoleAdmin Role = "admin"
)

// ParseRole normalizes a wire role string to its canonical Role. The
// upstream API emits approver roles with two separator conventions
// ("approver_level_1" and "approver-level-1"); both parse to the same
// canonical value. Matching is case-insensitive. Returns ("", false)
// for strings outside the enumeration so that callers branch on the
// result exactly once, at the ingestion boundary.
func ParseRole(raw string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch Role(normalized) {
	case RoleStaff, RoleApproverLevel1, RoleApproverLevel2, RoleFinance, RoleAdmin:
		return Role(normalized), true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the canonical values.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleApproverLevel1, RoleApproverLevel2, RoleFinance, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsApprover reports whether the role is either approver level. The two
// levels differ only in their position in the approval chain; every
// client-side decision treats them identically.
func (r Role) IsApprover() bool {
	return r == RoleApproverLevel1 || r == RoleApproverLevel2
}

// Display returns the human-readable label for the role. This is the
// derived fallback used when the server payload does not carry its own
// role_display field.
func (r Role) Display() string {
	switch r {
	case RoleStaff:
		return "Staff"
	case RoleApproverLevel1:
		return "Approver (Level 1)"
	case RoleApproverLevel2:
		return "Approver (Level 2)"
	case RoleFinance:
		return "Finance"
	case RoleAdmin:
		return "Administrator"
	default:
		return string(r)
	}
}
