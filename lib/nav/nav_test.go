// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package nav

import (
	"testing"

	"github.com/Philbert250/Procure-to-Pay/lib/identity"
)

func paths(entries []Entry) []string {
	result := make([]string, len(entries))
	for i, entry := range entries {
		result[i] = entry.Path
	}
	return result
}

func equalPaths(t *testing.T, got []Entry, want []string) {
	t.Helper()
	gotPaths := paths(got)
	if len(gotPaths) != len(want) {
		t.Fatalf("menu = %v, want %v", gotPaths, want)
	}
	for i := range want {
		if gotPaths[i] != want[i] {
			t.Fatalf("menu = %v, want %v", gotPaths, want)
		}
	}
}

func TestResolveLoading(t *testing.T) {
	ident := &identity.Identity{Role: identity.RoleAdmin}
	if entries := Resolve(ident, true, Options{}); len(entries) != 0 {
		t.Errorf("loading menu must be empty, got %v", paths(entries))
	}
	if entries := Resolve(nil, false, Options{}); len(entries) != 0 {
		t.Errorf("anonymous menu must be empty, got %v", paths(entries))
	}
}

func TestResolvePerRole(t *testing.T) {
	t.Run("staff", func(t *testing.T) {
		entries := Resolve(&identity.Identity{Role: identity.RoleStaff}, false, Options{IncludeProfile: true})
		equalPaths(t, entries, []string{PathDashboard, PathMyRequests, PathCreateRequest, PathProfile})
	})

	t.Run("approver levels share one set", func(t *testing.T) {
		level1 := Resolve(&identity.Identity{Role: identity.RoleApproverLevel1}, false, Options{})
		level2 := Resolve(&identity.Identity{Role: identity.RoleApproverLevel2}, false, Options{})
		equalPaths(t, level1, []string{PathDashboard, PathPending, PathAllRequests})
		equalPaths(t, level2, []string{PathDashboard, PathPending, PathAllRequests})
	})

	t.Run("finance", func(t *testing.T) {
		entries := Resolve(&identity.Identity{Role: identity.RoleFinance}, false, Options{IncludeProfile: true})
		equalPaths(t, entries, []string{PathDashboard, PathApproved, PathAllRequests, PathProfile})
		for _, entry := range entries {
			if entry.Path == PathCreateRequest || entry.Path == PathUsers {
				t.Errorf("finance menu must not contain %s", entry.Path)
			}
		}
	})

	t.Run("admin", func(t *testing.T) {
		entries := Resolve(&identity.Identity{Role: identity.RoleAdmin}, false, Options{})
		equalPaths(t, entries, []string{PathDashboard, PathAllRequests, PathUsers, PathRequestTypes, PathApprovalLevels})
	})

	t.Run("unknown role falls back to staff set", func(t *testing.T) {
		entries := Resolve(&identity.Identity{Role: identity.Role("contractor")}, false, Options{})
		equalPaths(t, entries, []string{PathDashboard, PathMyRequests, PathCreateRequest})
	})
}

func TestResolveSuperuser(t *testing.T) {
	t.Run("non-admin superuser sees the union, deduplicated", func(t *testing.T) {
		entries := Resolve(&identity.Identity{Role: identity.RoleFinance, IsSuperuser: true}, false, Options{IncludeProfile: true})
		equalPaths(t, entries, []string{
			PathDashboard,
			PathMyRequests, PathCreateRequest,
			PathPending, PathAllRequests,
			PathApproved,
			PathUsers, PathRequestTypes, PathApprovalLevels,
			PathProfile,
		})
		// "All Requests" appears in three contribution sets; first
		// occurrence (approver's) must be the only survivor.
		count := 0
		for _, entry := range entries {
			if entry.Path == PathAllRequests {
				count++
			}
		}
		if count != 1 {
			t.Errorf("All Requests appears %d times, want 1", count)
		}
	})

	t.Run("admin superuser sees only the admin menu", func(t *testing.T) {
		entries := Resolve(&identity.Identity{Role: identity.RoleAdmin, IsSuperuser: true}, false, Options{})
		equalPaths(t, entries, []string{PathDashboard, PathAllRequests, PathUsers, PathRequestTypes, PathApprovalLevels})
	})
}

func TestVisible(t *testing.T) {
	staff := &identity.Identity{Role: identity.RoleStaff}
	if !Visible(staff, PathCreateRequest) {
		t.Error("staff must see Create Request")
	}
	if Visible(staff, PathUsers) {
		t.Error("staff must not see Users")
	}
	super := &identity.Identity{Role: identity.RoleStaff, IsSuperuser: true}
	if !Visible(super, PathUsers) {
		t.Error("superuser must see Users")
	}
}
