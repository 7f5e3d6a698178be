// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
)

func TestToolErrorWrapping(t *testing.T) {
	inner := errors.New("request tkt-42 not found")
	err := NotFound("lookup: %w", inner)

	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q", err.Category)
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is should see through ToolError")
	}
}

func TestCategorizeAPIErrors(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCategory
	}{
		{400, CategoryValidation},
		{401, CategoryForbidden},
		{403, CategoryForbidden},
		{404, CategoryNotFound},
		{409, CategoryConflict},
		{500, CategoryTransient},
		{503, CategoryTransient},
		{418, CategoryInternal},
	}

	for _, test := range tests {
		apiErr := &api.APIError{StatusCode: test.status, Detail: "x"}
		wrapped := fmt.Errorf("call failed: %w", apiErr)

		var toolErr *ToolError
		if !errors.As(Categorize(wrapped), &toolErr) {
			t.Fatalf("status %d: Categorize did not return a ToolError", test.status)
		}
		if toolErr.Category != test.want {
			t.Errorf("status %d: category = %q, want %q", test.status, toolErr.Category, test.want)
		}
	}
}

func TestCategorizeNetworkErrorIsTransient(t *testing.T) {
	var toolErr *ToolError
	if !errors.As(Categorize(errors.New("dial tcp: connection refused")), &toolErr) {
		t.Fatal("expected ToolError")
	}
	if toolErr.Category != CategoryTransient {
		t.Errorf("category = %q, want transient", toolErr.Category)
	}
}

func TestCategorizePassesThroughToolError(t *testing.T) {
	original := Validation("bad input")
	result := Categorize(original)
	var toolErr *ToolError
	if !errors.As(result, &toolErr) || toolErr.Category != CategoryValidation {
		t.Error("existing ToolError should pass through unchanged")
	}
}

func TestCategorizeNil(t *testing.T) {
	if Categorize(nil) != nil {
		t.Error("Categorize(nil) should be nil")
	}
}
