// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete procure CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	admincmd "github.com/Philbert250/Procure-to-Pay/cmd/procure/admin"
	approvalcmd "github.com/Philbert250/Procure-to-Pay/cmd/procure/approval"
	"github.com/Philbert250/Procure-to-Pay/cmd/procure/cli"
	dashboardcmd "github.com/Philbert250/Procure-to-Pay/cmd/procure/dashboard"
	requestcmd "github.com/Philbert250/Procure-to-Pay/cmd/procure/request"
	"github.com/Philbert250/Procure-to-Pay/lib/version"
)

// Root builds and returns the complete procure CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "procure",
		Description: `Procure-to-Pay: procurement workflow client.

Create and track purchase requests, work an approval queue, and
administer users, request types, and approval levels — from the
command line or the interactive dashboard.`,
		Subcommands: []*cli.Command{
			cli.LoginCommand(),
			cli.LogoutCommand(),
			cli.WhoAmICommand(),
			cli.ProfileCommand(),
			dashboardcmd.Command(),
			requestcmd.Command(),
			approvalcmd.Command(),
			admincmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("procure %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Authenticate (saves the session locally)",
				Command:     "procure login alice",
			},
			{
				Description: "Open the interactive dashboard",
				Command:     "procure dashboard",
			},
			{
				Description: "Create and submit a purchase request",
				Command:     "procure request create --title \"Standing desks\" --type Furniture --amount 1200 --submit",
			},
			{
				Description: "Work the approval queue",
				Command:     "procure approval pending",
			},
			{
				Description: "Approve with a comment",
				Command:     "procure approval approve REQ-42 --comment \"within budget\"",
			},
			{
				Description: "List every request as JSON for scripting",
				Command:     "procure request list --output json",
			},
		},
	}
}
