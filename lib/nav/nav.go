// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package nav derives what an identity can see. Resolve turns
// (role, superuser, loading) into the ordered menu shown by the
// dashboard sidebar and the command listing; Guard is the per-page
// decision table. Both are pure functions — every caller that gates
// anything goes through here, so the sidebar, the command layer, and
// the page guard can never disagree.
package nav

import "github.com/Philbert250/Procure-to-Pay/lib/identity"

// Entry is one navigation item: a routable page gated by role
// membership. Role membership is evaluated before superuser
// expansion — AllowedRoles answers "which roles contribute this
// entry", not "who can ultimately see it".
type Entry struct {
	// Path is the route identifier (e.g., "/requests").
	Path string
	// Label is the display text.
	Label string
	// AllowedRoles are the roles whose contribution sets include this
	// entry.
	AllowedRoles []identity.Role
}

// Well-known paths. The dashboard page doubles as the default landing
// page for role-restriction redirects.
const (
	PathDashboard      = "/dashboard"
	PathMyRequests     = "/requests/mine"
	PathCreateRequest  = "/requests/new"
	PathPending        = "/approvals/pending"
	PathAllRequests    = "/requests"
	PathApproved       = "/requests/approved"
	PathUsers          = "/admin/users"
	PathRequestTypes   = "/admin/request-types"
	PathApprovalLevels = "/admin/approval-levels"
	PathProfile        = "/profile"
	PathLogin          = "/login"
)

var (
	approverRoles = []identity.Role{identity.RoleApproverLevel1, identity.RoleApproverLevel2}

	baseEntries = []Entry{
		{Path: PathDashboard, Label: "Dashboard"},
	}

	staffEntries = []Entry{
		{Path: PathMyRequests, Label: "My Requests", AllowedRoles: []identity.Role{identity.RoleStaff}},
		{Path: PathCreateRequest, Label: "Create Request", AllowedRoles: []identity.Role{identity.RoleStaff}},
	}

	approverEntries = []Entry{
		{Path: PathPending, Label: "Pending Approvals", AllowedRoles: approverRoles},
		{Path: PathAllRequests, Label: "All Requests", AllowedRoles: approverRoles},
	}

	financeEntries = []Entry{
		{Path: PathApproved, Label: "Approved Requests", AllowedRoles: []identity.Role{identity.RoleFinance}},
		{Path: PathAllRequests, Label: "All Requests", AllowedRoles: []identity.Role{identity.RoleFinance}},
	}

	adminEntries = []Entry{
		{Path: PathAllRequests, Label: "All Requests", AllowedRoles: []identity.Role{identity.RoleAdmin}},
		{Path: PathUsers, Label: "Users", AllowedRoles: []identity.Role{identity.RoleAdmin}},
		{Path: PathRequestTypes, Label: "Request Types", AllowedRoles: []identity.Role{identity.RoleAdmin}},
		{Path: PathApprovalLevels, Label: "Approval Levels", AllowedRoles: []identity.Role{identity.RoleAdmin}},
	}

	profileEntry = Entry{Path: PathProfile, Label: "Profile"}
)

// Options adjusts resolution for the two menu surfaces.
type Options struct {
	// IncludeProfile appends the Profile entry for authenticated
	// identities. The sidebar sets it; the header omits it because
	// profile access hangs off the user badge instead.
	IncludeProfile bool
}

// Resolve returns the ordered navigation entries visible to the given
// identity state.
//
// While loading, or with no identity, the menu is empty — no premature
// flash of entries the verify step may take away. A superuser whose
// role is not admin sees the union of every contribution set; a
// superuser who is already admin sees only the admin menu (the union
// would say nothing new). An unrecognized role falls back to the staff
// set, the least-privileged menu.
func Resolve(ident *identity.Identity, loading bool, options Options) []Entry {
	if loading || ident == nil {
		return nil
	}

	entries := make([]Entry, 0, 12)
	entries = append(entries, baseEntries...)

	switch {
	case ident.IsSuperuser && ident.Role != identity.RoleAdmin:
		entries = append(entries, staffEntries...)
		entries = append(entries, approverEntries...)
		entries = append(entries, financeEntries...)
		entries = append(entries, adminEntries...)
	default:
		entries = append(entries, contribution(ident.Role)...)
	}

	if options.IncludeProfile {
		entries = append(entries, profileEntry)
	}

	return dedupeByPath(entries)
}

// contribution returns the single contribution set for a role.
func contribution(role identity.Role) []Entry {
	switch {
	case role == identity.RoleStaff:
		return staffEntries
	case role.IsApprover():
		return approverEntries
	case role == identity.RoleFinance:
		return financeEntries
	case role == identity.RoleAdmin:
		return adminEntries
	default:
		// Defensive default for a role outside the enumeration.
		return staffEntries
	}
}

// dedupeByPath drops later duplicates, preserving first-seen order.
// Duplicates are routine: "All Requests" is contributed by approver,
// finance, and admin sets, and the superuser union would otherwise
// show it three times.
func dedupeByPath(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	deduped := entries[:0:0]
	for _, entry := range entries {
		if seen[entry.Path] {
			continue
		}
		seen[entry.Path] = true
		deduped = append(deduped, entry)
	}
	return deduped
}

// Visible reports whether the identity may reach the given path. This
// is the boolean form of Resolve used by command gating: membership in
// the resolved menu (including Profile).
func Visible(ident *identity.Identity, path string) bool {
	for _, entry := range Resolve(ident, false, Options{IncludeProfile: true}) {
		if entry.Path == path {
			return true
		}
	}
	return false
}
