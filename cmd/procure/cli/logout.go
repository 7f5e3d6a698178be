// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Philbert250/Procure-to-Pay/lib/cache"
	"github.com/Philbert250/Procure-to-Pay/lib/session"
)

// LogoutCommand returns the "logout" command. Logout is purely local:
// it removes the session file and the response cache without any
// network call, and succeeds even when no session exists.
func LogoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Discard the saved session",
		Description: `Remove the locally saved session and response cache.

No network call is made — the server is not notified, and the tokens
simply stop being used. Running logout when not logged in is a no-op.`,
		Usage: "procure logout",
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}

			store := session.New(session.Options{Logger: logger})
			store.Logout()
			cache.New("", logger).Clear()

			fmt.Fprintln(os.Stderr, "Logged out")
			return nil
		},
	}
}
