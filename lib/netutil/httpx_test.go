// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	data, err := ReadResponse(strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("body = %q", data)
	}
}

func TestDecodeResponse(t *testing.T) {
	var payload struct {
		Count int `json:"count"`
	}
	if err := DecodeResponse(strings.NewReader(`{"count":3}`), &payload); err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if payload.Count != 3 {
		t.Errorf("count = %d, want 3", payload.Count)
	}

	if err := DecodeResponse(strings.NewReader("not json"), &payload); err == nil {
		t.Error("malformed body accepted")
	}
}

func TestErrorBodyIgnoresReadErrors(t *testing.T) {
	if got := ErrorBody(strings.NewReader("boom")); got != "boom" {
		t.Errorf("body = %q", got)
	}
}
