// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/Philbert250/Procure-to-Pay/lib/session"
)

// loginParams holds the parameters for the login command. All flags
// are credential-handling infrastructure.
type loginParams struct {
	Connection
	PasswordFile string `json:"-" flag:"password-file" desc:"path to file containing password, or - to prompt interactively (default: prompt)"`
}

// LoginCommand returns the "login" command for authenticating against
// the procurement server. This exchanges credentials for a token pair,
// and saves the resulting session to the well-known path
// (~/.config/procure/session.json). Subsequent CLI commands load this
// session transparently, like SSH keys.
func LoginCommand() *Command {
	var params loginParams

	return &Command{
		Name:    "login",
		Summary: "Authenticate against the procurement server",
		Description: `Log in to the procurement server and save the session locally.

After login, commands like "procure request list" and "procure dashboard"
use the saved session transparently — no flags needed. Authenticate once,
then access is seamless until the refresh token expires.

The session file is stored at ~/.config/procure/session.json (or
$PROCURE_SESSION_FILE if set, or $XDG_CONFIG_HOME/procure/session.json).
The file is written with mode 0600 (owner-only read/write) since it
contains access and refresh tokens.

The password can be provided via --password-file (a path to a file
containing the password) or prompted interactively if --password-file
is "-" or omitted.`,
		Usage: "procure login <username> [flags]",
		Examples: []Example{
			{
				Description: "Log in interactively (prompts for password)",
				Command:     "procure login alice",
			},
			{
				Description: "Log in with explicit server",
				Command:     "procure login alice --server https://procure.example.com",
			},
			{
				Description: "Log in with password from file",
				Command:     "procure login alice --password-file /path/to/password",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) < 1 {
				return Validation("username is required\n\nUsage: procure login <username> [flags]")
			}
			username := args[0]
			if len(args) > 1 {
				return Validation("unexpected argument: %s", args[1])
			}

			password, err := readLoginPassword(params.PasswordFile)
			if err != nil {
				return err
			}

			app, err := params.ConnectAnonymous()
			if err != nil {
				return err
			}
			defer app.Client.CloseIdleConnections()

			loginCtx, cancel := CallContext(ctx, app.Config)
			defer cancel()

			ident, err := app.Session.Login(loginCtx, app.Client, username, password)
			if err != nil {
				return Categorize(fmt.Errorf("login failed: %w", err))
			}

			// A fresh login may be a different user; cached lists from
			// the previous session are role-scoped and must not leak.
			app.Cache.Clear()

			fmt.Fprintf(os.Stderr, "Logged in as %s (%s)\n", ident.Username, ident.RoleDisplay)
			fmt.Fprintf(os.Stderr, "Session saved to %s\n", session.FilePath())
			return nil
		},
	}
}

// readLoginPassword reads a password for the login command. If
// passwordFile is empty or "-", prompts interactively on the terminal
// with echo disabled. Otherwise, reads from the file path.
func readLoginPassword(passwordFile string) (string, error) {
	if passwordFile != "" && passwordFile != "-" {
		return readPasswordFile(passwordFile)
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return "", Validation("no terminal available for interactive password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", Internal("reading password: %w", err)
	}
	if len(passwordBytes) == 0 {
		return "", Validation("empty password")
	}
	return string(passwordBytes), nil
}

// readPasswordFile reads a password from a file path. Strips trailing
// newlines (common with echo/printf pipelines).
func readPasswordFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Internal("reading %s: %w", path, err)
	}

	for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
		data = data[:len(data)-1]
	}

	if len(data) == 0 {
		return "", Validation("file %s is empty (after stripping trailing newlines)", path)
	}
	return string(data), nil
}
