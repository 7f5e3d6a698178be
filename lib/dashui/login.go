// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/tui"
)

// loginForm is the in-dashboard login page: username and password
// fields, tab to switch, enter to submit. Shown whenever the route
// guard redirects to login, including mid-session expiry.
type loginForm struct {
	username string
	password string
	field    int // 0 = username, 1 = password
	busy     bool
	errText  string
}

func newLoginForm() *loginForm { return &loginForm{} }

func (f *loginForm) Reset() {
	f.username = ""
	f.password = ""
	f.field = 0
	f.busy = false
	f.errText = ""
}

// Fail surfaces a login error and re-enables the form.
func (f *loginForm) Fail(err error) {
	f.busy = false
	f.password = ""
	f.field = 1
	f.errText = err.Error()
}

func (f *loginForm) Update(m *Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if f.busy {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		f.field = 1 - f.field
	case tea.KeyEnter:
		if f.field == 0 {
			f.field = 1
			return m, nil
		}
		if strings.TrimSpace(f.username) == "" || f.password == "" {
			f.errText = "username and password are required"
			return m, nil
		}
		f.busy = true
		f.errText = ""
		return m, f.submitCmd(m)
	case tea.KeyBackspace:
		f.edit(func(s string) string {
			if s == "" {
				return s
			}
			runes := []rune(s)
			return string(runes[:len(runes)-1])
		})
	case tea.KeyRunes:
		f.edit(func(s string) string { return s + string(msg.Runes) })
	case tea.KeySpace:
		f.edit(func(s string) string { return s + " " })
	}
	return m, nil
}

func (f *loginForm) edit(apply func(string) string) {
	if f.field == 0 {
		f.username = apply(f.username)
	} else {
		f.password = apply(f.password)
	}
}

func (f *loginForm) submitCmd(m *Model) tea.Cmd {
	username := strings.TrimSpace(f.username)
	password := f.password
	return func() tea.Msg {
		client, ok := m.backend.(*api.Client)
		if !ok {
			// The token exchange needs a real client; backends
			// without one cannot sign in.
			return loginMsg{err: errors.New("login is not available")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		ident, err := m.session.Login(ctx, client, username, password)
		return loginMsg{ident: ident, err: err}
	}
}

func (f *loginForm) Render(theme tui.Theme, width int) []string {
	label := lipgloss.NewStyle().Foreground(theme.FaintText)
	active := lipgloss.NewStyle().Foreground(theme.AccentColor)
	value := lipgloss.NewStyle().Foreground(theme.NormalText)

	line := func(index int, name, text string) string {
		style := label
		cursor := ""
		if f.field == index && !f.busy {
			style = active
			cursor = active.Render("█")
		}
		return "  " + style.Render(name) + "  " + value.Render(text) + cursor
	}

	lines := []string{
		"",
		lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).Render("  Sign in"),
		"",
		line(0, "Username", f.username),
		line(1, "Password", strings.Repeat("•", len([]rune(f.password)))),
		"",
	}
	switch {
	case f.busy:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render("  signing in…"))
	case f.errText != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.MessageError).Render("  "+f.errText))
	default:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.HelpText).Render("  tab switch field  enter sign in"))
	}
	return lines
}
