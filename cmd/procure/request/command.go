// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package request implements the "procure request" subcommand group:
// creating, editing, submitting, and inspecting purchase requests,
// plus receipt attachments on approved requests.
package request

import "github.com/Philbert250/Procure-to-Pay/cmd/procure/cli"

// Command returns the "request" subcommand group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "request",
		Summary: "Purchase request commands",
		Description: `Create and manage purchase requests.

Staff members create draft requests, edit them, and submit them into
the approval chain. Approvers, finance, and administrators can browse
the full request list; staff see their own requests.`,
		Subcommands: []*cli.Command{
			listCommand(),
			showCommand(),
			createCommand(),
			updateCommand(),
			submitCommand(),
			deleteCommand(),
			historyCommand(),
			receiptCommand(),
		},
	}
}
