// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"

	"github.com/Philbert250/Procure-to-Pay/lib/tui"
)

// Row is a single entry in a list page. Search is the text the fuzzy
// filter runs against; Status, when set, picks the row's accent color.
type Row struct {
	ID     string
	Cells  []string
	Status string
	Search string
}

// listPane holds the rows of the active page plus cursor, scroll, and
// filter state. Filtering is fuzzy: rows are re-ranked by match score
// while a filter is active and restored to natural order when cleared.
type listPane struct {
	columns []string
	rows    []Row

	filter   string
	filtered []int

	cursor int
	offset int
	height int

	slab *util.Slab
}

func newListPane() *listPane {
	return &listPane{slab: tui.NewSlab()}
}

// SetRows replaces the pane contents and re-applies any active filter.
// The cursor is clamped rather than reset so a refresh keeps the
// user's place.
func (p *listPane) SetRows(columns []string, rows []Row) {
	p.columns = columns
	p.rows = rows
	p.applyFilter()
}

func (p *listPane) SetFilter(pattern string) {
	p.filter = pattern
	p.applyFilter()
}

func (p *listPane) applyFilter() {
	if p.filter == "" {
		p.filtered = make([]int, len(p.rows))
		for i := range p.rows {
			p.filtered[i] = i
		}
	} else {
		type scored struct {
			index int
			score int
		}
		pattern := []rune(p.filter)
		var matches []scored
		for i, row := range p.rows {
			result := tui.FuzzyMatch(row.Search, pattern, p.slab)
			if result.Matched {
				matches = append(matches, scored{index: i, score: result.Score})
			}
		}
		sort.SliceStable(matches, func(a, b int) bool {
			return matches[a].score > matches[b].score
		})
		p.filtered = make([]int, len(matches))
		for i, m := range matches {
			p.filtered[i] = m.index
		}
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.ensureVisible()
}

// Current returns the row under the cursor.
func (p *listPane) Current() (Row, bool) {
	if p.cursor < 0 || p.cursor >= len(p.filtered) {
		return Row{}, false
	}
	return p.rows[p.filtered[p.cursor]], true
}

func (p *listPane) Len() int { return len(p.filtered) }

func (p *listPane) Move(delta int) {
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.ensureVisible()
}

func (p *listPane) MoveHome() {
	p.cursor = 0
	p.ensureVisible()
}

func (p *listPane) MoveEnd() {
	p.cursor = len(p.filtered) - 1
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.ensureVisible()
}

func (p *listPane) ensureVisible() {
	if p.height <= 0 {
		return
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.height {
		p.offset = p.cursor - p.height + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// Render draws the pane into a slice of lines: a header row, the
// visible window of rows, and a scrollbar column when the rows
// overflow. The cursor row is highlighted only while the pane has
// focus.
func (p *listPane) Render(theme tui.Theme, width, height int, focused bool) []string {
	p.height = height - 1
	if p.height < 1 {
		p.height = 1
	}
	p.ensureVisible()

	widths := p.columnWidths(width)
	headerStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	lines := []string{headerStyle.Render(formatColumns(p.columns, widths))}

	barWidth := 0
	var bar []string
	if len(p.filtered) > p.height {
		bar = strings.Split(tui.RenderScrollbar(theme, p.height, len(p.filtered), p.height, p.offset, focused), "\n")
		barWidth = 2
	}

	for line := 0; line < p.height; line++ {
		index := p.offset + line
		var text string
		if index < len(p.filtered) {
			row := p.rows[p.filtered[index]]
			text = formatColumns(row.Cells, widths)
			style := lipgloss.NewStyle().Foreground(theme.NormalText)
			if row.Status != "" {
				style = style.Foreground(theme.StatusColor(row.Status))
			}
			if index == p.cursor && focused {
				style = style.
					Foreground(theme.SelectedForeground).
					Background(theme.SelectedBackground)
				text = padRight(text, width-barWidth)
			}
			text = style.Render(text)
		}
		if bar != nil {
			text = lipgloss.JoinHorizontal(lipgloss.Top, padRight(text, width-barWidth), " "+bar[line])
		}
		lines = append(lines, text)
	}
	return lines
}

// columnWidths sizes columns to their widest cell, then gives any
// remaining width to the last column.
func (p *listPane) columnWidths(total int) []int {
	widths := make([]int, len(p.columns))
	for i, name := range p.columns {
		widths[i] = len(name)
	}
	for _, row := range p.rows {
		for i, cell := range row.Cells {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	used := 0
	for _, w := range widths {
		used += w + 2
	}
	if len(widths) > 0 && used < total {
		widths[len(widths)-1] += total - used
	}
	return widths
}

func formatColumns(cells []string, widths []int) string {
	var b strings.Builder
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if len(cell) > w {
			cell = cell[:w]
		}
		b.WriteString(cell)
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", w-len(cell)+2))
		}
	}
	return b.String()
}

func padRight(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
