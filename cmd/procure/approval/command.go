// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package approval implements the "procure approval" subcommand group:
// the queue of requests waiting at the caller's approval level, and
// the approve/reject decisions on them.
package approval

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

// Command returns the "approval" subcommand group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "approval",
		Summary: "Approval queue commands",
		Description: `Work the approval queue.

Approvers see the requests waiting at their level; approving moves a
request to the next level (or to approved at the last level),
rejecting ends it. Rejection requires a comment — the requester needs
to know why.`,
		Subcommands: []*cli.Command{
			pendingCommand(),
			approveCommand(),
			rejectCommand(),
		},
	}
}

// --- pending ---

type pendingParams struct {
	cli.Connection
	cli.StructuredOutput
	Page     int `json:"page"      flag:"page"      desc:"result page" default:"1"`
	PageSize int `json:"page_size" flag:"page-size" desc:"results per page (0 = server default)"`
}

func pendingCommand() *cli.Command {
	var params pendingParams

	return &cli.Command{
		Name:    "pending",
		Summary: "List requests waiting for your decision",
		Usage:   "procure approval pending [flags]",
		Examples: []cli.Example{
			{
				Description: "Show the queue",
				Command:     "procure approval pending",
			},
			{
				Description: "Feed the queue to a script",
				Command:     "procure approval pending --output json",
			},
		},
		Params: func() any { return &params },
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

			if err := app.RequireVisible(nav.PathPending); err != nil {
				return err
			}

			options := api.ListOptions{Page: params.Page, PageSize: params.PageSize}
			page, err := app.Client.PendingApprovals(ctx, options)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Put("approvals", fmt.Sprintf("pending:%+v", options), page)

			if done, err := params.Emit(page.Results); done {
				return err
			}

			if len(page.Results) == 0 {
				logger.Info("queue is empty")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tAMOUNT\tLEVEL\tREQUESTED BY\tSUBMITTED")
			for _, request := range page.Results {
				fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%s\t%s\n",
					request.ID, request.Title, request.Amount, request.Currency,
					request.CurrentLevel, request.RequestedBy,
					request.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
}

// --- approve / reject ---

type decisionParams struct {
	cli.Connection
	cli.StructuredOutput
	Comment string `json:"comment" flag:"comment,c" desc:"decision comment"`
}

func approveCommand() *cli.Command {
	var params decisionParams

	return &cli.Command{
		Name:    "approve",
		Summary: "Approve a pending request",
		Description: `Approve a request at your level. At intermediate levels the request
moves on to the next approver; at the final level it becomes approved.
A comment is optional.`,
		Usage: "procure approval approve <request-id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Approve with a comment",
				Command:     `procure approval approve 42 --comment "within budget"`,
			},
		},
		Params: func() any { return &params },
		Run:    decideRun(&params, "approve"),
	}
}

func rejectCommand() *cli.Command {
	var params decisionParams

	return &cli.Command{
		Name:    "reject",
		Summary: "Reject a pending request",
		Description: `Reject a request at your level, ending its approval chain. A comment
is required so the requester knows what to fix.`,
		Usage: "procure approval reject <request-id> --comment REASON",
		Params: func() any { return &params },
		Run:    decideRun(&params, "reject"),
	}
}

// decideRun builds the shared Run for approve and reject. The two
// commands differ only in the API call and the comment requirement.
func decideRun(params *decisionParams, decision string) func(context.Context, []string, *slog.Logger) error {
	return func(ctx context.Context, args []string, logger *slog.Logger) error {
		if len(args) != 1 {
			return cli.Validation("exactly one request ID is required")
		}
		if decision == "reject" && params.Comment == "" {
			return cli.Validation("--comment is required when rejecting")
		}

		app, ctx, cancel, err := params.Connect(ctx)
		if err != nil {
			return err
		}
		defer cancel()
		defer app.Client.CloseIdleConnections()

		if err := app.RequireVisible(nav.PathPending); err != nil {
			return err
		}

		var decided *api.PurchaseRequest
		if decision == "approve" {
			decided, err = app.Client.ApproveRequest(ctx, args[0], params.Comment)
		} else {
			decided, err = app.Client.RejectRequest(ctx, args[0], params.Comment)
		}
		if err != nil {
			return cli.Categorize(err)
		}
		app.Cache.Invalidate("requests", "approvals")

		if done, err := params.Emit(decided); done {
			return err
		}
		logger.Info("decision recorded",
			"id", decided.ID, "decision", decision, "status", decided.Status)
		return nil
	}
}
