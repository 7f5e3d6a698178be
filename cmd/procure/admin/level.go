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

func levelCommand() *cli.Command {
	return &cli.Command{
		Name:    "level",
		Summary: "Approval level management",
		Description: `Manage the approval chain: how many decisions a request needs and
the amount threshold at each step. Requests under a level's threshold
skip that level.`,
		Subcommands: []*cli.Command{
			levelListCommand(),
			levelCreateCommand(),
			levelUpdateCommand(),
			levelDeleteCommand(),
		},
	}
}

// --- list ---

type levelListParams struct {
	cli.Connection
	cli.StructuredOutput
}

func levelListCommand() *cli.Command {
	var params levelListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List approval levels",
		Usage:   "procure admin level list [flags]",
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

			if err := app.RequireVisible(nav.PathApprovalLevels); err != nil {
				return err
			}

			levels, err := app.Client.ListApprovalLevels(ctx)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Put("approval-levels", "list", levels)

			if done, err := params.Emit(levels); done {
				return err
			}

			if len(levels) == 0 {
				logger.Info("no approval levels configured")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tLEVEL\tNAME\tTHRESHOLD")
			for _, level := range levels {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
					level.ID, level.Level, level.Name, level.Threshold)
			}
			return tw.Flush()
		},
	}
}

// --- create ---

type levelCreateParams struct {
	cli.Connection
	cli.StructuredOutput
	Level     int    `json:"level"     flag:"level,l"   desc:"position in the chain (1 = first)"`
	Name      string `json:"name"      flag:"name,n"    desc:"level name (e.g. \"Department head\")"`
	Threshold string `json:"threshold" flag:"threshold" desc:"minimum amount requiring this level, decimal string"`
}

func levelCreateCommand() *cli.Command {
	var params levelCreateParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create an approval level",
		Usage:   "procure admin level create --level N --name NAME [flags]",
		Examples: []cli.Example{
			{
				Description: "Require a second approval above 10000",
				Command:     `procure admin level create --level 2 --name "Finance director" --threshold 10000`,
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Level <= 0 || params.Name == "" {
				return cli.Validation("--level (positive) and --name are required")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			if err := app.RequireVisible(nav.PathApprovalLevels); err != nil {
				return err
			}

			created, err := app.Client.CreateApprovalLevel(ctx, api.ApprovalLevel{
				Level:     params.Level,
				Name:      params.Name,
				Threshold: params.Threshold,
			})
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("approval-levels")

			if done, err := params.Emit(created); done {
				return err
			}
			logger.Info("approval level created", "id", created.ID, "level", created.Level)
			return nil
		},
	}
}

// --- update ---

type levelUpdateParams struct {
	cli.Connection
	cli.StructuredOutput
	Name      string `json:"name"      flag:"name,n"    desc:"new name"`
	Threshold string `json:"threshold" flag:"threshold" desc:"new threshold"`
}

func levelUpdateCommand() *cli.Command {
	var params levelUpdateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Update an approval level",
		Usage:   "procure admin level update <level-id> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one level ID is required")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			if err := app.RequireVisible(nav.PathApprovalLevels); err != nil {
				return err
			}

			levels, err := app.Client.ListApprovalLevels(ctx)
			if err != nil {
				return cli.Categorize(err)
			}
			var current *api.ApprovalLevel
			for _, level := range levels {
				if level.ID == args[0] {
					current = &level
					break
				}
			}
			if current == nil {
				return cli.NotFound("no approval level %q", args[0])
			}

			input := *current
			if params.Name != "" {
				input.Name = params.Name
			}
			if params.Threshold != "" {
				input.Threshold = params.Threshold
			}

			updated, err := app.Client.UpdateApprovalLevel(ctx, current.ID, input)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("approval-levels")

			if done, err := params.Emit(updated); done {
				return err
			}
			logger.Info("approval level updated", "id", updated.ID, "level", updated.Level)
			return nil
		},
	}
}

// --- delete ---

type levelDeleteParams struct {
	cli.Connection
	Force bool `json:"-" flag:"force,f" desc:"delete without confirmation"`
}

func levelDeleteCommand() *cli.Command {
	var params levelDeleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete an approval level",
		Description: `Remove a level from the approval chain. Requests currently waiting at
this level are re-evaluated by the server against the remaining chain.`,
		Usage: "procure admin level delete <level-id> --force",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one level ID is required")
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

			if err := app.RequireVisible(nav.PathApprovalLevels); err != nil {
				return err
			}

			if err := app.Client.DeleteApprovalLevel(ctx, args[0]); err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("approval-levels")

			logger.Info("approval level deleted", "id", args[0])
			return nil
		},
	}
}
