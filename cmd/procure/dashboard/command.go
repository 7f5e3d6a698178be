// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboard launches the interactive procurement TUI.
package dashboard

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Philbert250/Procure-to-Pay/cmd/procure/cli"
	"github.com/Philbert250/Procure-to-Pay/lib/dashui"
)

type dashboardParams struct {
	cli.Connection
}

// Command returns the "dashboard" command.
func Command() *cli.Command {
	var params dashboardParams

	return &cli.Command{
		Name:    "dashboard",
		Summary: "Open the interactive procurement dashboard",
		Description: `Full-screen terminal dashboard: role-driven sidebar, filterable
request and approval lists, request detail with approval history, and
in-place approve and reject with comments.

An existing saved session is restored on startup; without one the
dashboard opens on its login page. The session restore and every page
load go through the same client as the CLI commands, so an expired
access token refreshes transparently and an exhausted session drops
back to the login page.`,
		Usage: "procure dashboard [flags]",
		Examples: []cli.Example{
			{
				Description: "Open the dashboard with the saved session",
				Command:     "procure dashboard",
			},
			{
				Description: "Open against a specific server, bypassing the cache",
				Command:     "procure dashboard --server https://procure.example.com --no-cache",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			app, err := params.ConnectAnonymous()
			if err != nil {
				return err
			}

			model := dashui.New(dashui.Config{
				Session: app.Session,
				Backend: app.Client,
				Cache:   app.Cache,
			})
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil {
				return cli.Internal("dashboard: %w", err)
			}
			return nil
		},
	}
}
