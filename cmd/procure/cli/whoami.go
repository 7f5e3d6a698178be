// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Philbert250/Procure-to-Pay/lib/identity"
	"github.com/Philbert250/Procure-to-Pay/lib/session"
)

// whoamiParams holds the parameters for the whoami command.
type whoamiParams struct {
	Connection
	StructuredOutput
	Verify bool `json:"verify" flag:"verify" desc:"verify the session against the server"`
}

// whoamiOutput is the structured output for the whoami command.
type whoamiOutput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	RoleDisplay string `json:"role_display"`
	Superuser   bool   `json:"is_superuser"`
	SessionFile string `json:"session_file"`
	Status      string `json:"status,omitempty"`
}

// WhoAmICommand returns the "whoami" command for displaying the
// current identity. Shows the saved session's username, role, and
// session file path. With --verify, checks the tokens against the
// server to confirm the session is still valid.
func WhoAmICommand() *Command {
	var params whoamiParams

	return &Command{
		Name:    "whoami",
		Summary: "Show the current identity",
		Description: `Display the currently logged-in identity.

Shows the username, role, and session file path from the saved session
(created by "procure login").

With --verify, the saved tokens are checked against the server to
confirm the session is still valid — a stale access token is refreshed
in place. Without --verify, only the local session file is read (no
network access).`,
		Usage: "procure whoami [flags]",
		Examples: []Example{
			{
				Description: "Show current identity",
				Command:     "procure whoami",
			},
			{
				Description: "Verify the session is still valid",
				Command:     "procure whoami --verify",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}

			if params.Verify {
				app, _, cancel, err := params.Connect(ctx)
				if err != nil {
					return err
				}
				defer cancel()
				defer app.Client.CloseIdleConnections()

				return writeWhoami(params, app.Identity(), "valid")
			}

			// Local-only path: read the session file directly.
			ident, err := session.SavedIdentity()
			if err != nil {
				return Forbidden("not logged in — run \"procure login <username>\"")
			}
			return writeWhoami(params, ident, "")
		},
	}
}

func writeWhoami(params whoamiParams, ident identity.Identity, status string) error {
	output := whoamiOutput{
		Username:    ident.Username,
		Email:       ident.Email,
		Role:        string(ident.Role),
		RoleDisplay: ident.RoleDisplay,
		Superuser:   ident.IsSuperuser,
		SessionFile: session.FilePath(),
		Status:      status,
	}

	if done, err := params.Emit(output); done {
		return err
	}

	fmt.Fprintf(os.Stdout, "Username:     %s\n", output.Username)
	fmt.Fprintf(os.Stdout, "Email:        %s\n", output.Email)
	fmt.Fprintf(os.Stdout, "Role:         %s (%s)\n", output.RoleDisplay, output.Role)
	if output.Superuser {
		fmt.Fprintf(os.Stdout, "Superuser:    yes\n")
	}
	fmt.Fprintf(os.Stdout, "Session file: %s\n", output.SessionFile)
	if output.Status != "" {
		fmt.Fprintf(os.Stdout, "Status:       %s\n", output.Status)
	}
	return nil
}
