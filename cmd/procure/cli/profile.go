// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
)

type profileParams struct {
	Connection
	StructuredOutput
	Username string `json:"username" flag:"username" desc:"new username"`
	Email    string `json:"email"    flag:"email"    desc:"new email address"`
}

// ProfileCommand returns the "profile" command for viewing and editing
// the logged-in user's own profile. Role cannot be changed here; that
// is an admin operation.
func ProfileCommand() *Command {
	var params profileParams

	return &Command{
		Name:    "profile",
		Summary: "Show or update your profile",
		Description: `Display the logged-in user's profile, or update it.

Without flags, shows the current profile. With --username or --email,
sends the changed fields to the server and updates the saved session
so later commands see the new values immediately. Role and superuser
status are managed by administrators and cannot be changed here.`,
		Usage: "procure profile [flags]",
		Examples: []Example{
			{
				Description: "Show the current profile",
				Command:     "procure profile",
			},
			{
				Description: "Change the email address",
				Command:     "procure profile --email alice@example.com",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			ident := app.Identity()

			if params.Username != "" || params.Email != "" {
				update := api.ProfileUpdate{}
				if params.Username != "" {
					update.Username = &params.Username
				}
				if params.Email != "" {
					update.Email = &params.Email
				}

				payload, err := app.Client.UpdateProfile(ctx, update)
				if err != nil {
					return Categorize(err)
				}
				ident, err = identity.Normalize(payload)
				if err != nil {
					return Internal("server returned unusable profile: %w", err)
				}
				if err := app.Session.UpdateIdentity(ident); err != nil {
					return Internal("update saved session: %w", err)
				}
			}

			if done, err := params.Emit(ident); done {
				return err
			}

			fmt.Fprintf(os.Stdout, "Username: %s\n", ident.Username)
			fmt.Fprintf(os.Stdout, "Email:    %s\n", ident.Email)
			fmt.Fprintf(os.Stdout, "Role:     %s (%s)\n", ident.RoleDisplay, ident.Role)
			if ident.IsSuperuser {
				fmt.Fprintf(os.Stdout, "Superuser: yes\n")
			}
			return nil
		},
	}
}
