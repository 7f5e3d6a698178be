// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package request

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

// --- list ---

type listParams struct {
	cli.Connection
	cli.StructuredOutput
	Status   string `json:"status"    flag:"status,s"   desc:"filter by status (draft, submitted, pending_approval, approved, rejected)"`
	Mine     bool   `json:"mine"      flag:"mine,m"     desc:"only requests created by you"`
	Search   string `json:"search"    flag:"search"     desc:"free-text filter applied server-side"`
	Page     int    `json:"page"      flag:"page"       desc:"result page" default:"1"`
	PageSize int    `json:"page_size" flag:"page-size"  desc:"results per page (0 = server default)"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List purchase requests",
		Description: `List purchase requests with optional filters.

Staff roles list their own requests (--mine is implied); approver,
finance, and admin roles list everything. Results come from the local
response cache when available, with the fresh fetch replacing the
cached page.`,
		Usage: "procure request list [flags]",
		Examples: []cli.Example{
			{
				Description: "List your own requests",
				Command:     "procure request list --mine",
			},
			{
				Description: "List all approved requests as JSON",
				Command:     "procure request list --status approved --output json",
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

			// Staff cannot browse the full list; narrow to --mine
			// rather than failing, matching what their menu offers.
			ident := app.Identity()
			if !params.Mine && !nav.Visible(&ident, nav.PathAllRequests) {
				params.Mine = true
			}

			options := api.ListOptions{
				Page:     params.Page,
				PageSize: params.PageSize,
				Status:   api.RequestStatus(params.Status),
				Mine:     params.Mine,
				Search:   params.Search,
			}

			page, err := app.Client.ListRequests(ctx, options)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Put("requests", cacheKey("list", options), page)

			if done, err := params.Emit(page.Results); done {
				return err
			}

			if len(page.Results) == 0 {
				logger.Info("no requests found")
				return nil
			}
			return writeRequestTable(page.Results)
		},
	}
}

// --- show ---

type showParams struct {
	cli.Connection
	cli.StructuredOutput
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show request details",
		Description: `Display full details for a single purchase request, including its
current position in the approval chain.`,
		Usage: "procure request show <request-id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show a request",
				Command:     "procure request show 42",
			},
			{
				Description: "Show as YAML",
				Command:     "procure request show 42 --output yaml",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one request ID is required")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			request, err := app.Client.GetRequest(ctx, args[0])
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Put("requests", cacheKey("show", args[0]), request)

			if done, err := params.Emit(request); done {
				return err
			}
			writeRequestDetail(request)
			return nil
		},
	}
}

// --- history ---

type historyParams struct {
	cli.Connection
	cli.StructuredOutput
}

func historyCommand() *cli.Command {
	var params historyParams

	return &cli.Command{
		Name:    "history",
		Summary: "Show a request's approval history",
		Description: `List the recorded approval decisions for a request, oldest first:
who decided, at which level, and any comment they left.`,
		Usage: "procure request history <request-id> [flags]",
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

			history, err := app.Client.ApprovalHistory(ctx, args[0])
			if err != nil {
				return cli.Categorize(err)
			}

			if done, err := params.Emit(history); done {
				return err
			}

			if len(history) == 0 {
				logger.Info("no decisions recorded yet")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "LEVEL\tDECISION\tAPPROVER\tDATE\tCOMMENT")
			for _, decision := range history {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					decision.Level, decision.Decision, decision.Approver,
					decision.DecidedAt.Format("2006-01-02 15:04"), decision.Comment)
			}
			return tw.Flush()
		},
	}
}

// cacheKey builds a stable cache key from an operation name and its
// distinguishing input.
func cacheKey(operation string, input any) string {
	return fmt.Sprintf("%s:%+v", operation, input)
}

func writeRequestTable(requests []api.PurchaseRequest) error {
	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tAMOUNT\tSTATUS\tLEVEL\tREQUESTED BY")
	for _, request := range requests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%d\t%s\n",
			request.ID, request.Title, request.RequestType,
			request.Amount, request.Currency, request.Status,
			request.CurrentLevel, request.RequestedBy)
	}
	return tw.Flush()
}

func writeRequestDetail(request *api.PurchaseRequest) {
	fmt.Fprintf(os.Stdout, "ID:           %s\n", request.ID)
	fmt.Fprintf(os.Stdout, "Title:        %s\n", request.Title)
	fmt.Fprintf(os.Stdout, "Type:         %s\n", request.RequestType)
	fmt.Fprintf(os.Stdout, "Amount:       %s %s\n", request.Amount, request.Currency)
	fmt.Fprintf(os.Stdout, "Status:       %s\n", request.Status)
	fmt.Fprintf(os.Stdout, "Level:        %d\n", request.CurrentLevel)
	fmt.Fprintf(os.Stdout, "Requested by: %s\n", request.RequestedBy)
	fmt.Fprintf(os.Stdout, "Created:      %s\n", request.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(os.Stdout, "Updated:      %s\n", request.UpdatedAt.Format("2006-01-02 15:04"))
	if request.Description != "" {
		fmt.Fprintf(os.Stdout, "\n%s\n", request.Description)
	}
}
