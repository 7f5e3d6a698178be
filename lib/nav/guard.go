// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package nav

import (
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
	"github.com/Philbert250/Procure-to-Pay/lib/session"
)

// Decision is the route guard's verdict for one navigation attempt.
type Decision int

const (
	// Wait means the session is still loading: render a neutral
	// waiting indicator, decide nothing.
	Wait Decision = iota
	// RedirectLogin sends the visitor to the login entry point,
	// replacing history so "back" cannot land inside a guarded page.
	RedirectLogin
	// RedirectDashboard sends an authenticated-but-unauthorized
	// identity to the default landing page, also replacing history.
	RedirectDashboard
	// Render allows the guarded content.
	Render
)

// String renders the decision for logs and test failures.
func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Guard evaluates the route-guard decision table for a page with an
// optional role restriction. allowedRoles nil or empty means any
// authenticated identity may enter. A superuser passes every
// restriction regardless of role.
//
// The table, in order:
//
//	loading            → Wait
//	anonymous          → RedirectLogin
//	no restriction     → Render
//	role not a member  → RedirectDashboard
//	otherwise          → Render
//
// Pure decision — no side effects; the caller performs the navigation.
func Guard(state session.State, ident *identity.Identity, allowedRoles []identity.Role) Decision {
	switch state {
	case session.StateUninitialized, session.StateLoading:
		return Wait
	case session.StateAnonymous:
		return RedirectLogin
	}

	if len(allowedRoles) == 0 {
		return Render
	}
	if ident == nil {
		// Authenticated state with no identity is a programming
		// error; fail closed toward the landing page.
		return RedirectDashboard
	}
	if ident.IsSuperuser {
		return Render
	}
	for _, allowed := range allowedRoles {
		if ident.Role == allowed {
			return Render
		}
	}
	return RedirectDashboard
}
