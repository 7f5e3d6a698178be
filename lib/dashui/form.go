// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/nav"
	"github.com/Philbert250/Procure-to-Pay/lib/tui"
)

const (
	formFieldTitle = iota
	formFieldType
	formFieldAmount
	formFieldCurrency
	formFieldDescription
	formFieldCount
)

var formFieldNames = [formFieldCount]string{
	"Title", "Type", "Amount", "Currency", "Description",
}

// requestForm is the create-request page. Ctrl+D saves a draft,
// Ctrl+S saves and submits in one step.
type requestForm struct {
	fields  [formFieldCount]string
	field   int
	busy    bool
	errText string
}

func newRequestForm() *requestForm { return &requestForm{} }

func (f *requestForm) Reset() {
	*f = requestForm{}
	f.fields[formFieldCurrency] = "RWF"
}

func (f *requestForm) Update(m *Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if f.busy {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.focus = FocusSidebar
		return m, m.navigate(nav.PathDashboard)
	case tea.KeyTab, tea.KeyDown, tea.KeyEnter:
		f.field = (f.field + 1) % formFieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		f.field = (f.field + formFieldCount - 1) % formFieldCount
	case tea.KeyCtrlD:
		return f.save(m, false)
	case tea.KeyCtrlS:
		return f.save(m, true)
	case tea.KeyBackspace:
		if s := f.fields[f.field]; s != "" {
			runes := []rune(s)
			f.fields[f.field] = string(runes[:len(runes)-1])
		}
	case tea.KeyRunes:
		f.fields[f.field] += string(msg.Runes)
	case tea.KeySpace:
		f.fields[f.field] += " "
	}
	return m, nil
}

func (f *requestForm) save(m *Model, submit bool) (tea.Model, tea.Cmd) {
	input, err := f.input()
	if err != "" {
		f.errText = err
		return m, nil
	}
	f.busy = true
	f.errText = ""
	verb := "create"
	if submit {
		verb = "create and submit"
	}
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		request, err := m.backend.CreateRequest(ctx, input)
		if err == nil && submit {
			_, err = m.backend.SubmitRequest(ctx, request.ID)
		}
		if err == nil {
			m.cache.Invalidate("requests", "approvals")
		}
		return mutationMsg{verb: verb, err: err}
	}
}

// input validates the form. Amount must parse as a positive decimal;
// it is still sent as a string so the server's decimal type receives
// it exactly.
func (f *requestForm) input() (api.RequestInput, string) {
	title := strings.TrimSpace(f.fields[formFieldTitle])
	requestType := strings.TrimSpace(f.fields[formFieldType])
	amount := strings.TrimSpace(f.fields[formFieldAmount])
	if title == "" || requestType == "" || amount == "" {
		return api.RequestInput{}, "title, type, and amount are required"
	}
	if parsed, err := strconv.ParseFloat(amount, 64); err != nil || parsed <= 0 {
		return api.RequestInput{}, "amount must be a positive number"
	}
	return api.RequestInput{
		Title:       title,
		Description: strings.TrimSpace(f.fields[formFieldDescription]),
		RequestType: requestType,
		Amount:      amount,
		Currency:    strings.TrimSpace(f.fields[formFieldCurrency]),
	}, ""
}

func (f *requestForm) Render(theme tui.Theme, width int) []string {
	label := lipgloss.NewStyle().Foreground(theme.FaintText)
	active := lipgloss.NewStyle().Foreground(theme.AccentColor)
	value := lipgloss.NewStyle().Foreground(theme.NormalText)

	lines := []string{
		"",
		lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Render("  New purchase request"),
		"",
	}
	for i := 0; i < formFieldCount; i++ {
		style := label
		cursor := ""
		if i == f.field && !f.busy {
			style = active
			cursor = active.Render("█")
		}
		name := style.Render(formFieldNames[i] + strings.Repeat(" ", 12-len(formFieldNames[i])))
		lines = append(lines, "  "+name+value.Render(f.fields[i])+cursor)
	}
	lines = append(lines, "")
	switch {
	case f.busy:
		lines = append(lines, label.Render("  saving…"))
	case f.errText != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.MessageError).Render("  "+f.errText))
	default:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.HelpText).Render(
			"  tab next field  ctrl+d save draft  ctrl+s save and submit  esc cancel"))
	}
	return lines
}
