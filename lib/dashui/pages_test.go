// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"strings"
	"testing"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
	"github.com/Philbert250/Procure-to-Pay/lib/tui"
)

func TestDashboardRowsCountByStatus(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = []api.PurchaseRequest{
		{ID: "r-1", Status: api.StatusDraft},
		{ID: "r-2", Status: api.StatusDraft},
		{ID: "r-3", Status: api.StatusApproved},
	}
	admin := &identity.Identity{Role: identity.RoleAdmin}

	rows, err := dashboardRows(context.Background(), backend, admin)
	if err != nil {
		t.Fatalf("dashboardRows failed: %v", err)
	}
	// Two statuses plus the total row.
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1].Cells[0] != "draft" || rows[1].Cells[1] != "2" {
		t.Errorf("draft row = %v", rows[1].Cells)
	}
	if backend.lastListOptions.Mine {
		t.Errorf("admin summary narrowed to own requests")
	}
}

func TestDashboardRowsNarrowForStaff(t *testing.T) {
	backend := newFakeBackend()
	staff := &identity.Identity{Role: identity.RoleStaff}

	if _, err := dashboardRows(context.Background(), backend, staff); err != nil {
		t.Fatalf("dashboardRows failed: %v", err)
	}
	if !backend.lastListOptions.Mine {
		t.Errorf("staff summary not narrowed to own requests")
	}
}

func TestUserRowsDisplayRoleBothSpellings(t *testing.T) {
	rows := userRows([]api.User{
		{Username: "bob", Email: "b@example.com", Role: "approver-level-1", IsActive: true},
		{Username: "eve", Email: "e@example.com", Role: "intern", IsActive: false},
	})

	if got := rows[0].Cells[2]; got != "Approver (Level 1)" {
		t.Errorf("hyphen-spelled role displayed as %q", got)
	}
	// A role outside the enumeration stays raw rather than blanking
	// the column.
	if got := rows[1].Cells[2]; got != "intern" {
		t.Errorf("unknown role displayed as %q, want raw value", got)
	}
	if rows[1].Cells[3] != "no" {
		t.Errorf("inactive user rendered %q", rows[1].Cells[3])
	}
}

func TestCollectionForMatchesCLIInvalidation(t *testing.T) {
	cases := map[string]string{
		"/approvals/pending":     "approvals",
		"/admin/users":           "users",
		"/admin/request-types":   "request-types",
		"/admin/approval-levels": "approval-levels",
		"/requests":              "requests",
		"/dashboard":             "requests",
	}
	for path, want := range cases {
		if got := collectionFor(path); got != want {
			t.Errorf("collectionFor(%s) = %q, want %q", path, got, want)
		}
	}
}

func TestRenderTerminalMarkdown(t *testing.T) {
	source := "# Quote\n\nThree desks from *Kigali* Office Supplies.\nDelivery included.\n\n- desk A\n- desk B\n\n```go\nprice := 1200\n```\n"

	output := renderTerminalMarkdown(source, tui.DefaultTheme, 60)

	if output == "" {
		t.Fatal("empty render")
	}
	if !strings.Contains(output, "Quote") {
		t.Errorf("heading missing from output")
	}
	// The soft line break inside the paragraph must reflow to a
	// space, not survive as a line break mid-sentence.
	if !strings.Contains(stripANSI(output), "Delivery") {
		t.Errorf("paragraph text missing")
	}
	if !strings.Contains(stripANSI(output), "• desk A") {
		t.Errorf("bullet missing: %q", stripANSI(output))
	}
	if !strings.Contains(stripANSI(output), "price := 1200") {
		t.Errorf("code block missing")
	}
}

func TestRenderTerminalMarkdownEmpty(t *testing.T) {
	if got := renderTerminalMarkdown("", tui.DefaultTheme, 60); got != "" {
		t.Errorf("empty input rendered %q", got)
	}
}

// stripANSI removes escape sequences so assertions can match plain
// text.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
