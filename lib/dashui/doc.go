// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashui implements the interactive procurement dashboard: a
// bubbletea program with a role-driven sidebar, filterable list pages
// for requests, approvals, and admin collections, a markdown-rendered
// detail pane, and an approve/reject comment modal.
//
// The sidebar is produced by the navigation resolver (lib/nav), so a
// user only ever sees the pages their role grants; every page switch
// re-runs the route guard, so a session that expires mid-flight drops
// the user onto the login page instead of a broken view.
package dashui
