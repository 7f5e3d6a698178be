// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package admin implements the "procure admin" subcommand group:
// user accounts, request types, and the approval level chain. All of
// it is admin-only; the server enforces that, and the commands check
// the local role first to fail fast.
package admin

import "github.com/Philbert250/Procure-to-Pay/cmd/procure/cli"

// Command returns the "admin" subcommand group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Summary: "Administration commands",
		Description: `Manage users, request types, and approval levels.

These commands require the admin role (or superuser status). The
approval level chain defines how many decisions a request needs and
the amount threshold at each step.`,
		Subcommands: []*cli.Command{
			userCommand(),
			typeCommand(),
			levelCommand(),
		},
	}
}
