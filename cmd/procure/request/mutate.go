// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Philbert250/Procure-to-Pay/cmd/procure/cli"
	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/nav"
)

// --- create ---

type createParams struct {
	cli.Connection
	cli.StructuredOutput
	Title       string `json:"title"        flag:"title,t"     desc:"request title"`
	Description string `json:"description"  flag:"description" desc:"detailed justification"`
	Type        string `json:"request_type" flag:"type"        desc:"request type name (see \"procure admin type list\")"`
	Amount      string `json:"amount"       flag:"amount,a"    desc:"amount, decimal string (e.g. 1499.99)"`
	Currency    string `json:"currency"     flag:"currency"    desc:"ISO currency code" default:"USD"`
	Submit      bool   `json:"submit"       flag:"submit"      desc:"submit immediately instead of leaving a draft"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a purchase request",
		Description: `Create a new purchase request as a draft.

Drafts are private and editable; submit moves a draft into the
approval chain. With --submit, the request is submitted in the same
invocation.`,
		Usage: "procure request create --title TITLE --type TYPE --amount AMOUNT [flags]",
		Examples: []cli.Example{
			{
				Description: "Create a draft",
				Command:     `procure request create --title "Standing desks" --type equipment --amount 2400.00`,
			},
			{
				Description: "Create and submit in one step",
				Command:     `procure request create --title "License renewal" --type software --amount 99.00 --submit`,
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Title == "" || params.Type == "" || params.Amount == "" {
				return cli.Validation("--title, --type, and --amount are required")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			if err := app.RequireVisible(nav.PathCreateRequest); err != nil {
				return err
			}

			created, err := app.Client.CreateRequest(ctx, api.RequestInput{
				Title:       params.Title,
				Description: params.Description,
				RequestType: params.Type,
				Amount:      params.Amount,
				Currency:    params.Currency,
			})
			if err != nil {
				return cli.Categorize(err)
			}

			if params.Submit {
				created, err = app.Client.SubmitRequest(ctx, created.ID)
				if err != nil {
					return cli.Categorize(fmt.Errorf("draft %s created but submit failed: %w", created.ID, err))
				}
			}
			app.Cache.Invalidate("requests")

			if done, err := params.Emit(created); done {
				return err
			}
			logger.Info("request created", "id", created.ID, "status", created.Status)
			fmt.Fprintf(os.Stdout, "%s\n", created.ID)
			return nil
		},
	}
}

// --- update ---

type updateParams struct {
	cli.Connection
	cli.StructuredOutput
	Title       string `json:"title"        flag:"title,t"     desc:"new title"`
	Description string `json:"description"  flag:"description" desc:"new description"`
	Type        string `json:"request_type" flag:"type"        desc:"new request type"`
	Amount      string `json:"amount"       flag:"amount,a"    desc:"new amount"`
	Currency    string `json:"currency"     flag:"currency"    desc:"new currency code"`
}

func updateCommand() *cli.Command {
	var params updateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Edit a draft request",
		Description: `Update the fields of a draft request. Only drafts are editable —
once submitted, a request is frozen for the approval chain. Omitted
flags keep their current values.`,
		Usage: "procure request update <request-id> [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one request ID is required")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			// Merge over the current server state so omitted flags
			// keep their values.
			current, err := app.Client.GetRequest(ctx, args[0])
			if err != nil {
				return cli.Categorize(err)
			}
			input := api.RequestInput{
				Title:       current.Title,
				Description: current.Description,
				RequestType: current.RequestType,
				Amount:      current.Amount,
				Currency:    current.Currency,
			}
			if params.Title != "" {
				input.Title = params.Title
			}
			if params.Description != "" {
				input.Description = params.Description
			}
			if params.Type != "" {
				input.RequestType = params.Type
			}
			if params.Amount != "" {
				input.Amount = params.Amount
			}
			if params.Currency != "" {
				input.Currency = params.Currency
			}

			updated, err := app.Client.UpdateRequest(ctx, args[0], input)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("requests")

			if done, err := params.Emit(updated); done {
				return err
			}
			logger.Info("request updated", "id", updated.ID)
			return nil
		},
	}
}

// --- submit ---

type submitParams struct {
	cli.Connection
	cli.StructuredOutput
}

func submitCommand() *cli.Command {
	var params submitParams

	return &cli.Command{
		Name:    "submit",
		Summary: "Submit a draft into the approval chain",
		Description: `Submit a draft request for approval. The server moves it to the
first approval level; from here on it is read-only for the requester.`,
		Usage: "procure request submit <request-id>",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one request ID is required")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			submitted, err := app.Client.SubmitRequest(ctx, args[0])
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("requests", "approvals")

			if done, err := params.Emit(submitted); done {
				return err
			}
			logger.Info("request submitted", "id", submitted.ID, "status", submitted.Status)
			return nil
		},
	}
}

// --- delete ---

type deleteParams struct {
	cli.Connection
	Force bool `json:"-" flag:"force,f" desc:"delete without confirmation"`
}

func deleteCommand() *cli.Command {
	var params deleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a draft request",
		Description: `Delete a draft request. Submitted requests cannot be deleted — the
approval chain is an audit trail.`,
		Usage: "procure request delete <request-id> [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one request ID is required")
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

			if err := app.Client.DeleteRequest(ctx, args[0]); err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("requests")

			logger.Info("request deleted", "id", args[0])
			return nil
		},
	}
}
