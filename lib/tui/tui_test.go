// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFuzzyMatch(t *testing.T) {
	slab := NewSlab()

	t.Run("empty pattern matches everything", func(t *testing.T) {
		result := FuzzyMatch("anything", nil, slab)
		if !result.Matched {
			t.Error("empty pattern should match")
		}
	})

	t.Run("ordered subsequence matches", func(t *testing.T) {
		result := FuzzyMatch("Standing desks for the annex", []rune("sda"), slab)
		if !result.Matched {
			t.Fatal("expected match")
		}
		if len(result.Positions) != 3 {
			t.Errorf("positions = %v, want 3 entries", result.Positions)
		}
	})

	t.Run("out of order pattern misses", func(t *testing.T) {
		result := FuzzyMatch("abc", []rune("ca"), slab)
		if result.Matched {
			t.Error("expected no match")
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		result := FuzzyMatch("Office Chairs", []rune("office"), slab)
		if !result.Matched {
			t.Fatal("expected case-insensitive match")
		}
		if len(result.Positions) != 6 {
			t.Errorf("positions = %v, want the six leading runes", result.Positions)
		}
		if result.Score <= 0 {
			t.Errorf("score = %d, want positive", result.Score)
		}
	})

	t.Run("tighter match scores higher", func(t *testing.T) {
		tight := FuzzyMatch("laptop", []rune("lap"), slab)
		loose := FuzzyMatch("l-a-x-x-p", []rune("lap"), slab)
		if !tight.Matched || !loose.Matched {
			t.Fatal("both should match")
		}
		if tight.Score <= loose.Score {
			t.Errorf("tight score %d should beat loose score %d", tight.Score, loose.Score)
		}
	})
}

func TestSpliceOverlay(t *testing.T) {
	view := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbbbbbbbb",
		"cccccccccc",
	}, "\n")

	result := SpliceOverlay(view, []string{"XXX"}, 2, 1)
	lines := strings.Split(result, "\n")
	if len(lines) != 3 {
		t.Fatalf("line count changed: %d", len(lines))
	}
	if !strings.Contains(lines[1], "XXX") {
		t.Errorf("overlay not spliced into line 1: %q", lines[1])
	}
	if strings.Contains(lines[0], "XXX") || strings.Contains(lines[2], "XXX") {
		t.Error("overlay leaked onto other lines")
	}
	if !strings.HasPrefix(lines[1], "bb") {
		t.Errorf("prefix before anchor lost: %q", lines[1])
	}
}

func TestExtractExcerpt(t *testing.T) {
	body := "\n\n  \nFirst line\nSecond line\nThird line\n"
	excerpt := ExtractExcerpt(body, 80, 2)
	if len(excerpt) != 2 {
		t.Fatalf("excerpt length = %d", len(excerpt))
	}
	if excerpt[0] != "First line" || excerpt[1] != "Second line" {
		t.Errorf("excerpt = %v", excerpt)
	}
}

func TestThemeStatusColor(t *testing.T) {
	theme := DefaultTheme
	if theme.StatusColor("approved") != theme.StatusApproved {
		t.Error("approved color mismatch")
	}
	if theme.StatusColor("nonsense") != theme.FaintText {
		t.Error("unknown status should be faint")
	}
}

func TestCommentModalEditing(t *testing.T) {
	modal := NewCommentModal("Reject request 42", DefaultTheme)

	typeString := func(s string) {
		for _, r := range s {
			modal.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
	}

	typeString("over budget")
	modal.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeString("resubmit in Q3")

	if got := modal.Value(); got != "over budget\nresubmit in Q3" {
		t.Errorf("Value = %q", got)
	}

	// Backspace at line start merges lines.
	modal.Update(tea.KeyMsg{Type: tea.KeyHome})
	modal.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := modal.Value(); got != "over budgetresubmit in Q3" {
		t.Errorf("Value after merge = %q", got)
	}
}

func TestRenderScrollbarThumbSpansWhenContentFits(t *testing.T) {
	bar := RenderScrollbar(DefaultTheme, 4, 3, 10, 0, false)
	lines := strings.Split(bar, "\n")
	if len(lines) != 4 {
		t.Fatalf("height = %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "┃") {
			t.Errorf("expected full thumb, got %q", line)
		}
	}
}
