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
	"github.com/Philbert250/Procure-to-Pay/lib/nav"
)

func typeCommand() *cli.Command {
	return &cli.Command{
		Name:    "type",
		Summary: "Request type management",
		Description: `Manage the categories staff pick from when creating a request.
Deactivated types stay attached to historical requests but disappear
from the create form.`,
		Subcommands: []*cli.Command{
			typeListCommand(),
			typeCreateCommand(),
			typeUpdateCommand(),
			typeDeleteCommand(),
		},
	}
}

// --- list ---

type typeListParams struct {
	cli.Connection
	cli.StructuredOutput
}

func typeListCommand() *cli.Command {
	var params typeListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List request types",
		Usage:   "procure admin type list [flags]",
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

			if err := app.RequireVisible(nav.PathRequestTypes); err != nil {
				return err
			}

			types, err := app.Client.ListRequestTypes(ctx)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Put("request-types", "list", types)

			if done, err := params.Emit(types); done {
				return err
			}

			if len(types) == 0 {
				logger.Info("no request types configured")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tACTIVE\tDESCRIPTION")
			for _, requestType := range types {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n",
					requestType.ID, requestType.Name, requestType.Active,
					requestType.Description)
			}
			return tw.Flush()
		},
	}
}

// --- create ---

type typeCreateParams struct {
	cli.Connection
	cli.StructuredOutput
	Name        string `json:"name"        flag:"name,n"      desc:"type name"`
	Description string `json:"description" flag:"description" desc:"what belongs in this category"`
}

func typeCreateCommand() *cli.Command {
	var params typeCreateParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a request type",
		Usage:   "procure admin type create --name NAME [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Name == "" {
				return cli.Validation("--name is required")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			if err := app.RequireVisible(nav.PathRequestTypes); err != nil {
				return err
			}

			created, err := app.Client.CreateRequestType(ctx, api.RequestType{
				Name:        params.Name,
				Description: params.Description,
				Active:      true,
			})
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("request-types")

			if done, err := params.Emit(created); done {
				return err
			}
			logger.Info("request type created", "id", created.ID, "name", created.Name)
			return nil
		},
	}
}

// --- update ---

type typeUpdateParams struct {
	cli.Connection
	cli.StructuredOutput
	Name        string `json:"name"        flag:"name,n"      desc:"new name"`
	Description string `json:"description" flag:"description" desc:"new description"`
	Activate    bool   `json:"-"           flag:"activate"    desc:"make the type selectable again"`
	Deactivate  bool   `json:"-"           flag:"deactivate"  desc:"hide the type from the create form"`
}

func typeUpdateCommand() *cli.Command {
	var params typeUpdateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Update a request type",
		Usage:   "procure admin type update <type-id> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one type ID is required")
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

			if err := app.RequireVisible(nav.PathRequestTypes); err != nil {
				return err
			}

			current, err := findRequestType(ctx, app, args[0])
			if err != nil {
				return err
			}

			input := *current
			if params.Name != "" {
				input.Name = params.Name
			}
			if params.Description != "" {
				input.Description = params.Description
			}
			if params.Activate {
				input.Active = true
			}
			if params.Deactivate {
				input.Active = false
			}

			updated, err := app.Client.UpdateRequestType(ctx, current.ID, input)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("request-types")

			if done, err := params.Emit(updated); done {
				return err
			}
			logger.Info("request type updated", "id", updated.ID, "name", updated.Name)
			return nil
		},
	}
}

// --- delete ---

type typeDeleteParams struct {
	cli.Connection
	Force bool `json:"-" flag:"force,f" desc:"delete without confirmation"`
}

func typeDeleteCommand() *cli.Command {
	var params typeDeleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a request type",
		Usage:   "procure admin type delete <type-id> --force",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one type ID is required")
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

			if err := app.RequireVisible(nav.PathRequestTypes); err != nil {
				return err
			}

			if err := app.Client.DeleteRequestType(ctx, args[0]); err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("request-types")

			logger.Info("request type deleted", "id", args[0])
			return nil
		},
	}
}

// findRequestType resolves a type by ID or name.
func findRequestType(ctx context.Context, app *cli.App, idOrName string) (*api.RequestType, error) {
	types, err := app.Client.ListRequestTypes(ctx)
	if err != nil {
		return nil, cli.Categorize(err)
	}
	for _, requestType := range types {
		if requestType.ID == idOrName || requestType.Name == idOrName {
			return &requestType, nil
		}
	}
	return nil, cli.NotFound("no request type %q", idOrName)
}
