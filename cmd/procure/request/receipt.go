// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/Philbert250/Procure-to-Pay/cmd/procure/cli"
)

// receiptCommand returns the "receipt" subcommand group for attaching
// purchase documents to approved requests.
func receiptCommand() *cli.Command {
	return &cli.Command{
		Name:    "receipt",
		Summary: "Receipt attachments",
		Description: `Upload, list, and download receipts attached to a request.

Uploads carry a BLAKE3 content checksum; downloads verify the stored
checksum before the file is considered intact.`,
		Subcommands: []*cli.Command{
			receiptUploadCommand(),
			receiptListCommand(),
			receiptDownloadCommand(),
		},
	}
}

// --- upload ---

type receiptUploadParams struct {
	cli.Connection
	cli.StructuredOutput
}

func receiptUploadCommand() *cli.Command {
	var params receiptUploadParams

	return &cli.Command{
		Name:    "upload",
		Summary: "Attach a receipt file to a request",
		Usage:   "procure request receipt upload <request-id> <file>",
		Examples: []cli.Example{
			{
				Description: "Attach an invoice PDF",
				Command:     "procure request receipt upload 42 ./invoice.pdf",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return cli.Validation("usage: procure request receipt upload <request-id> <file>")
			}
			requestID, path := args[0], args[1]

			file, err := os.Open(path)
			if err != nil {
				return cli.Internal("open %s: %w", path, err)
			}
			defer file.Close()

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			contentType := mime.TypeByExtension(filepath.Ext(path))
			if contentType == "" {
				contentType = "application/octet-stream"
			}

			receipt, err := app.Client.UploadReceipt(ctx, requestID, filepath.Base(path), contentType, file)
			if err != nil {
				return cli.Categorize(err)
			}
			app.Cache.Invalidate("requests")

			if done, err := params.Emit(receipt); done {
				return err
			}
			logger.Info("receipt uploaded",
				"id", receipt.ID, "request", requestID,
				"bytes", receipt.SizeBytes, "checksum", receipt.Checksum)
			return nil
		},
	}
}

// --- list ---

type receiptListParams struct {
	cli.Connection
	cli.StructuredOutput
}

func receiptListCommand() *cli.Command {
	var params receiptListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List receipts attached to a request",
		Usage:   "procure request receipt list <request-id> [flags]",
		Params:  func() any { return &params },
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

			receipts, err := app.Client.ListReceipts(ctx, args[0])
			if err != nil {
				return cli.Categorize(err)
			}

			if done, err := params.Emit(receipts); done {
				return err
			}

			if len(receipts) == 0 {
				logger.Info("no receipts attached")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILENAME\tSIZE\tUPLOADED BY\tDATE")
			for _, receipt := range receipts {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					receipt.ID, receipt.Filename, receipt.SizeBytes,
					receipt.UploadedBy, receipt.UploadedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
}

// --- download ---

type receiptDownloadParams struct {
	cli.Connection
	Out string `json:"-" flag:"out,o" desc:"output path (default: the receipt ID)"`
}

func receiptDownloadCommand() *cli.Command {
	var params receiptDownloadParams

	return &cli.Command{
		Name:    "download",
		Summary: "Download a receipt, verifying its checksum",
		Usage:   "procure request receipt download <receipt-id> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one receipt ID is required")
			}

			app, ctx, cancel, err := params.Connect(ctx)
			if err != nil {
				return err
			}
			defer cancel()
			defer app.Client.CloseIdleConnections()

			path := params.Out
			if path == "" {
				path = args[0]
			}
			out, err := os.Create(path)
			if err != nil {
				return cli.Internal("create %s: %w", path, err)
			}

			if err := app.Client.DownloadReceipt(ctx, args[0], out); err != nil {
				out.Close()
				os.Remove(path)
				return cli.Categorize(err)
			}
			if err := out.Close(); err != nil {
				return cli.Internal("close %s: %w", path, err)
			}

			logger.Info("receipt downloaded", "id", args[0], "path", path)
			return nil
		},
	}
}
