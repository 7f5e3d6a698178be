// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

func init() {
	// fzf keeps its scoring tables in package state; FuzzyMatchV2
	// silently fails on mixed-case text until a scheme is
	// initialized.
	if !algo.Init("default") {
		panic("tui: fzf scheme init failed")
	}
}

// FuzzyResult is the outcome of matching a pattern against one text.
type FuzzyResult struct {
	// Matched is true when every pattern rune was found in order.
	Matched bool

	// Score ranks matches: consecutive runs and word-boundary hits
	// score higher. Only meaningful when Matched.
	Score int

	// Positions are the rune indices of the matched characters,
	// used to highlight them in the rendered row.
	Positions []int
}

// NewSlab allocates the scratch memory fzf's matcher reuses across
// calls. One slab per matching pass; not safe for concurrent use.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch runs fzf's V2 fuzzy algorithm (case-insensitive, forward)
// for a pattern against a single text. An empty pattern matches
// everything with score zero.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}

	matchPositions := []int{}
	if positions != nil {
		matchPositions = *positions
	}
	return FuzzyResult{
		Matched:   true,
		Score:     result.Score,
		Positions: matchPositions,
	}
}
