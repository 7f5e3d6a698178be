// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/zeebo/blake3"

	"github.com/Philbert250/Procure-to-Pay/lib/netutil"
)

// MaxReceiptSize bounds receipt uploads. Receipts are invoices and
// delivery notes, not media; 32 MB is far beyond any legitimate scan.
const MaxReceiptSize int64 = 32 << 20

// UploadReceipt attaches a document to a request. The content is read
// fully up front (bounded by MaxReceiptSize) so the upload can be
// replayed once through the refresh path, and so its BLAKE3 checksum
// can be computed before any bytes leave the machine. The server
// verifies the checksum on arrival and stores it for later audit.
func (c *Client) UploadReceipt(ctx context.Context, requestID, filename, contentType string, content io.Reader) (*Receipt, error) {
	if requestID == "" {
		return nil, fmt.Errorf("api: request id is required")
	}
	if filename == "" {
		return nil, fmt.Errorf("api: filename is required")
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("api: reading receipt content: %w", err)
	}
	if int64(len(data)) > MaxReceiptSize {
		return nil, fmt.Errorf("api: receipt exceeds %d byte limit", MaxReceiptSize)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	checksum := blake3.Sum256(data)
	headers := http.Header{}
	headers.Set("X-Content-Checksum", "blake3:"+hex.EncodeToString(checksum[:]))
	headers.Set("X-Filename", filename)

	path := "/api/requests/" + url.PathEscape(requestID) + "/receipts/"

	// Same single-retry refresh contract as do, but with a replayable
	// raw body instead of a JSON one.
	const maxAttempts = 2
	for attempt := 1; ; attempt++ {
		body, err := c.sendRaw(ctx, http.MethodPost, path, contentType, bytes.NewReader(data), headers)
		if err == nil {
			var receipt Receipt
			if err := decode(body, &receipt, "receipt upload"); err != nil {
				return nil, err
			}
			return &receipt, nil
		}
		if !IsUnauthorized(err) || c.tokens == nil || attempt >= maxAttempts {
			return nil, err
		}

		refreshToken := c.tokens.RefreshToken()
		if refreshToken == "" {
			c.tokens.Expire()
			return nil, err
		}
		newAccess, refreshErr := c.RefreshAccessToken(ctx, refreshToken)
		if refreshErr != nil {
			c.tokens.Expire()
			return nil, refreshErr
		}
		if storeErr := c.tokens.SetAccessToken(newAccess); storeErr != nil {
			return nil, fmt.Errorf("api: persisting refreshed access token: %w", storeErr)
		}
	}
}

// ListReceipts lists the documents attached to a request.
func (c *Client) ListReceipts(ctx context.Context, requestID string) ([]Receipt, error) {
	if requestID == "" {
		return nil, fmt.Errorf("api: request id is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/api/requests/"+url.PathEscape(requestID)+"/receipts/", nil, nil)
	if err != nil {
		return nil, err
	}
	var receipts []Receipt
	if err := decode(body, &receipts, "receipt list"); err != nil {
		return nil, err
	}
	return receipts, nil
}

// DownloadReceipt streams a receipt's content to w, verifying the
// served checksum when the server provides one.
func (c *Client) DownloadReceipt(ctx context.Context, receiptID string, w io.Writer) error {
	if receiptID == "" {
		return fmt.Errorf("api: receipt id is required")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/receipts/"+url.PathEscape(receiptID)+"/content/", nil)
	if err != nil {
		return fmt.Errorf("api: failed to create request: %w", err)
	}
	if authorization := c.bearer(); authorization != "" {
		request.Header.Set("Authorization", authorization)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("api: receipt download failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return decodeError(response.StatusCode, []byte(netutil.ErrorBody(response.Body)))
	}

	hasher := blake3.New()
	if _, err := io.Copy(io.MultiWriter(w, hasher), response.Body); err != nil {
		return fmt.Errorf("api: reading receipt content: %w", err)
	}

	if served := response.Header.Get("X-Content-Checksum"); served != "" {
		computed := "blake3:" + hex.EncodeToString(hasher.Sum(nil))
		if served != computed {
			return fmt.Errorf("api: receipt checksum mismatch: served %s, computed %s", served, computed)
		}
	}
	return nil
}
