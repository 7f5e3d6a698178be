// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Philbert250/Procure-to-Pay/cmd/procure/cli"
	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
	"github.com/Philbert250/Procure-to-Pay/lib/nav"
)

func userCommand() *cli.Command {
	return &cli.Command{
		Name:    "user",
		Summary: "User account management",
		Subcommands: []*cli.Command{
			userListCommand(),
			userCreateCommand(),
			userUpdateCommand(),
			userDeleteCommand(),
		},
	}
}

// --- list ---

type userListParams struct {
	cli.Connection
	cli.StructuredOutput
	Search string `json:"search" flag:"search" desc:"filter by username or email"`
}

func userListCommand() *cli.Command {
	var params userListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List user accounts",
		Usage:   "procure admin user list [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			if err := app.RequireVisible(nav.PathUsers); err != nil {
				return err
			}

			page, err := app.Client.ListUsers(ctx, api.ListOptions{Search: params.Search})
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Put("users", "list:"+params.Search, page)

			if done, err := params.Emit(page.Results); done {
				return err
			}

			if len(page.Results) == 0 {
				logger.Info("no users found")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tACTIVE\tSUPERUSER")
			for _, user := range page.Results {
				roleLabel := user.Role
				if role, ok := identity.ParseRole(user.Role); ok {
					roleLabel = role.Display()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n",
					user.ID, user.Username, user.Email, roleLabel,
					user.IsActive, user.IsSuperuser)
			}
			return tw.Flush()
		},
	}
}

// --- create ---

type userCreateParams struct {
	cli.Connection
	cli.StructuredOutput
	Username     string `json:"username" flag:"username,u" desc:"login name"`
	Email        string `json:"email"    flag:"email,e"    desc:"email address"`
	Role         string `json:"role"     flag:"role,r"     desc:"role (staff, approver_level_1, approver_level_2, finance, admin)"`
	PasswordFile string `json:"-"        flag:"password-file" desc:"path to file containing the initial password"`
}

func userCreateCommand() *cli.Command {
	var params userCreateParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a user account",
		Usage:   "procure admin user create --username NAME --email EMAIL --role ROLE [flags]",
		Examples: []cli.Example{
			{
				Description: "Create a level-1 approver",
				Command:     "procure admin user create --username carol --email carol@example.com --role approver_level_1",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Username == "" || params.Email == "" || params.Role == "" {
				return cli.Validation("--username, --email, and --role are required")
			}
			role, ok := identity.ParseRole(params.Role)
			if !ok {
				return cli.Validation("unknown role %q", params.Role)
			}

			input := api.UserInput{
				Username: params.Username,
				Email:    params.Email,
				Role:     string(role),
			}
			if params.PasswordFile != "" {
				data, err := os.ReadFile(params.PasswordFile)
				if err != nil {
					return cli.Internal("reading %s: %w", params.PasswordFile, err)
				}
				for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
					data = data[:len(data)-1]
				}
				input.Password = string(data)
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			if err := app.RequireVisible(nav.PathUsers); err != nil {
				return err
			}

			created, err := app.Client.CreateUser(ctx, input)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("users")

			if done, err := params.Emit(created); done {
				return err
			}
			logger.Info("user created", "id", created.ID, "username", created.Username, "role", created.Role)
			return nil
		},
	}
}

// --- update ---

type userUpdateParams struct {
	cli.Connection
	cli.StructuredOutput
	Email      string `json:"email" flag:"email,e" desc:"new email address"`
	Role       string `json:"role"  flag:"role,r"  desc:"new role"`
	Activate   bool   `json:"-"     flag:"activate"   desc:"reactivate the account"`
	Deactivate bool   `json:"-"     flag:"deactivate" desc:"deactivate the account"`
}

func userUpdateCommand() *cli.Command {
	var params userUpdateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Update a user account",
		Description: `Change a user's email, role, or active status. The account is looked
up by username. Deactivated accounts keep their history but cannot
log in.`,
		Usage: "procure admin user update <username> [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one username is required")
			}
			if params.Activate && params.Deactivate {
				return cli.Validation("--activate and --deactivate are mutually exclusive")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			if err := app.RequireVisible(nav.PathUsers); err != nil {
				return err
			}

			target, err := findUser(ctx, app, args[0])
			if err != nil {
				return err
			}

			input := api.UserInput{
				Username: target.Username,
				Email:    target.Email,
				Role:     target.Role,
			}
			if params.Email != "" {
				input.Email = params.Email
			}
			if params.Role != "" {
				role, ok := identity.ParseRole(params.Role)
				if !ok {
					return cli.Validation("unknown role %q", params.Role)
				}
				input.Role = string(role)
			}
			if params.Activate || params.Deactivate {
				active := params.Activate
				input.IsActive = &active
			}

			updated, err := app.Client.UpdateUser(ctx, target.ID, input)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("users")

			if done, err := params.Emit(updated); done {
				return err
			}
			logger.Info("user updated", "id", updated.ID, "username", updated.Username)
			return nil
		},
	}
}

// --- delete ---

type userDeleteParams struct {
	cli.Connection
	Force bool `json:"-" flag:"force,f" desc:"delete without confirmation"`
}

func userDeleteCommand() *cli.Command {
	var params userDeleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a user account",
		Description: `Delete a user account by username. Prefer "update --deactivate" for
accounts with request history; deletion is for accounts created in
error.`,
		Usage: "procure admin user delete <username> --force",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one username is required")
			}
			if !params.Force {
				return cli.Validation("refusing to delete without --force")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			if err := app.RequireVisible(nav.PathUsers); err != nil {
				return err
			}

			target, err := findUser(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Client.DeleteUser(ctx, target.ID); err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("users")

			logger.Info("user deleted", "id", target.ID, "username", target.Username)
			return nil
		},
	}
}

// findUser resolves a username to the full account record via the
// server's search filter.
func findUser(ctx context.Context, app *cli.App, username string) (*api.User, error) {
	page, err := app.Client.ListUsers(ctx, api.ListOptions{Search: username})
	if err != nil {
		return nil, cli.Categorize(err)
	}
	for _, user := range page.Results {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, cli.NotFound("no user named %q", username)
}
