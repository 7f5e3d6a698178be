// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
	"github.com/Philbert250/Procure-to-Pay/lib/nav"
)

// collectionFor maps a page to its cache collection, so the CLI's
// mutations invalidate the dashboard's cached rows too.
func collectionFor(path string) string {
	switch path {
	case nav.PathPending:
		return "approvals"
	case nav.PathUsers:
		return "users"
	case nav.PathRequestTypes:
		return "request-types"
	case nav.PathApprovalLevels:
		return "approval-levels"
	default:
		return "requests"
	}
}

func columnsFor(path string) []string {
	switch path {
	case nav.PathDashboard:
		return []string{"STATUS", "COUNT"}
	case nav.PathUsers:
		return []string{"USERNAME", "EMAIL", "ROLE", "ACTIVE"}
	case nav.PathRequestTypes:
		return []string{"NAME", "ACTIVE", "DESCRIPTION"}
	case nav.PathApprovalLevels:
		return []string{"LEVEL", "NAME", "THRESHOLD"}
	default:
		return []string{"ID", "TITLE", "TYPE", "AMOUNT", "STATUS", "UPDATED"}
	}
}

// isRequestPage reports whether enter on a row should open the request
// detail pane.
func isRequestPage(path string) bool {
	switch path {
	case nav.PathMyRequests, nav.PathAllRequests, nav.PathApproved, nav.PathPending:
		return true
	}
	return false
}

// loadPage fetches the rows for one page. The dashboard summary and
// the request lists share the request collection; admin pages have
// their own endpoints.
func loadPage(ctx context.Context, backend Backend, path string, ident *identity.Identity) ([]string, []Row, error) {
	columns := columnsFor(path)
	switch path {
	case nav.PathDashboard:
		rows, err := dashboardRows(ctx, backend, ident)
		return columns, rows, err

	case nav.PathMyRequests:
		page, err := backend.ListRequests(ctx, api.ListOptions{Mine: true})
		if err != nil {
			return columns, nil, err
		}
		return columns, requestRows(page.Results), nil

	case nav.PathAllRequests:
		page, err := backend.ListRequests(ctx, api.ListOptions{})
		if err != nil {
			return columns, nil, err
		}
		return columns, requestRows(page.Results), nil

	case nav.PathApproved:
		page, err := backend.ListRequests(ctx, api.ListOptions{Status: api.StatusApproved})
		if err != nil {
			return columns, nil, err
		}
		return columns, requestRows(page.Results), nil

	case nav.PathPending:
		page, err := backend.PendingApprovals(ctx, api.ListOptions{})
		if err != nil {
			return columns, nil, err
		}
		return columns, requestRows(page.Results), nil

	case nav.PathUsers:
		page, err := backend.ListUsers(ctx, api.ListOptions{})
		if err != nil {
			return columns, nil, err
		}
		return columns, userRows(page.Results), nil

	case nav.PathRequestTypes:
		types, err := backend.ListRequestTypes(ctx)
		if err != nil {
			return columns, nil, err
		}
		return columns, requestTypeRows(types), nil

	case nav.PathApprovalLevels:
		levels, err := backend.ListApprovalLevels(ctx)
		if err != nil {
			return columns, nil, err
		}
		return columns, approvalLevelRows(levels), nil
	}
	return columns, nil, nil
}

// dashboardRows summarizes the caller's reachable requests by status.
// Staff see only their own; everyone else sees the full set the server
// grants them.
func dashboardRows(ctx context.Context, backend Backend, ident *identity.Identity) ([]Row, error) {
	options := api.ListOptions{PageSize: 200}
	if ident != nil && !nav.Visible(ident, nav.PathAllRequests) {
		options.Mine = true
	}
	page, err := backend.ListRequests(ctx, options)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, request := range page.Results {
		counts[string(request.Status)]++
	}
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	rows := make([]Row, 0, len(statuses)+1)
	for _, status := range statuses {
		rows = append(rows, Row{
			Cells:  []string{displayStatus(status), strconv.Itoa(counts[status])},
			Status: status,
			Search: status,
		})
	}
	rows = append(rows, Row{
		Cells:  []string{"total", strconv.Itoa(page.Count)},
		Search: "total",
	})
	return rows, nil
}

func requestRows(requests []api.PurchaseRequest) []Row {
	rows := make([]Row, 0, len(requests))
	for _, request := range requests {
		rows = append(rows, Row{
			ID: request.ID,
			Cells: []string{
				request.ID,
				request.Title,
				request.RequestType,
				fmt.Sprintf("%s %s", request.Amount, request.Currency),
				displayStatus(string(request.Status)),
				request.UpdatedAt.Format("2006-01-02"),
			},
			Status: string(request.Status),
			Search: request.Title + " " + request.RequestType + " " + request.ID,
		})
	}
	return rows
}

func userRows(users []api.User) []Row {
	rows := make([]Row, 0, len(users))
	for _, user := range users {
		active := "yes"
		if !user.IsActive {
			active = "no"
		}
		roleDisplay := user.Role
		if role, ok := identity.ParseRole(user.Role); ok {
			roleDisplay = role.Display()
		}
		rows = append(rows, Row{
			ID:     user.Username,
			Cells:  []string{user.Username, user.Email, roleDisplay, active},
			Search: user.Username + " " + user.Email + " " + roleDisplay,
		})
	}
	return rows
}

func requestTypeRows(types []api.RequestType) []Row {
	rows := make([]Row, 0, len(types))
	for _, requestType := range types {
		active := "yes"
		if !requestType.Active {
			active = "no"
		}
		rows = append(rows, Row{
			ID:     requestType.ID,
			Cells:  []string{requestType.Name, active, requestType.Description},
			Search: requestType.Name + " " + requestType.Description,
		})
	}
	return rows
}

func approvalLevelRows(levels []api.ApprovalLevel) []Row {
	rows := make([]Row, 0, len(levels))
	for _, level := range levels {
		rows = append(rows, Row{
			ID:     level.ID,
			Cells:  []string{strconv.Itoa(level.Level), level.Name, level.Threshold},
			Search: level.Name,
		})
	}
	return rows
}

// displayStatus renders a status value for humans: underscores become
// spaces, matching the sidebar's label register.
func displayStatus(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
