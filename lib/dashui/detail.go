// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/tui"
)

// detailPane renders one purchase request: a field block, the
// markdown-rendered description, and the approval history, inside a
// scrollable viewport.
type detailPane struct {
	theme    tui.Theme
	viewport viewport.Model
	width    int
}

func newDetailPane(theme tui.Theme) *detailPane {
	return &detailPane{theme: theme, viewport: viewport.New(80, 20)}
}

func (p *detailPane) Resize(width, height int) {
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}
	p.width = width
	p.viewport.Width = width
	p.viewport.Height = height
}

func (p *detailPane) SetRequest(request *api.PurchaseRequest, history []api.Approval) {
	p.viewport.SetContent(p.renderRequest(request, history))
	p.viewport.GotoTop()
}

func (p *detailPane) Update(msg tea.KeyMsg) {
	p.viewport, _ = p.viewport.Update(msg)
}

func (p *detailPane) Render() []string {
	return strings.Split(p.viewport.View(), "\n")
}

func (p *detailPane) renderRequest(request *api.PurchaseRequest, history []api.Approval) string {
	faint := lipgloss.NewStyle().Foreground(p.theme.FaintText)
	value := lipgloss.NewStyle().Foreground(p.theme.NormalText)
	title := lipgloss.NewStyle().Foreground(p.theme.HeaderForeground).Bold(true)
	status := lipgloss.NewStyle().Foreground(p.theme.StatusColor(string(request.Status)))

	var b strings.Builder
	b.WriteString(title.Render(request.Title) + "\n\n")

	field := func(name, text string) {
		b.WriteString(faint.Render(fmt.Sprintf("  %-12s", name)))
		b.WriteString(value.Render(text) + "\n")
	}
	field("ID", request.ID)
	field("Type", request.RequestType)
	field("Amount", request.Amount+" "+request.Currency)
	b.WriteString(faint.Render("  Status      "))
	b.WriteString(status.Render(displayStatus(string(request.Status))) + "\n")
	if request.Status == api.StatusPending {
		field("Level", fmt.Sprintf("%d", request.CurrentLevel))
	}
	field("Requested by", request.RequestedBy)
	field("Created", request.CreatedAt.Format("2006-01-02 15:04"))
	field("Updated", request.UpdatedAt.Format("2006-01-02 15:04"))

	if request.Description != "" {
		b.WriteString("\n")
		b.WriteString(renderTerminalMarkdown(request.Description, p.theme, p.width-2))
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("\n" + title.Render("Approval history") + "\n")
		for _, approval := range history {
			decision := lipgloss.NewStyle().Foreground(p.theme.StatusApproved)
			if approval.Decision == "rejected" {
				decision = lipgloss.NewStyle().Foreground(p.theme.StatusRejected)
			}
			b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
				faint.Render(fmt.Sprintf("L%d", approval.Level)),
				decision.Render(approval.Decision),
				value.Render(approval.Approver),
				faint.Render(approval.DecidedAt.Format("2006-01-02"))))
			if approval.Comment != "" {
				b.WriteString(faint.Render("     "+approval.Comment) + "\n")
			}
		}
	}
	return b.String()
}
