// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the procurement terminal UI.
// All colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Request lifecycle colors.
	StatusDraft     lipgloss.Color
	StatusSubmitted lipgloss.Color
	StatusPending   lipgloss.Color
	StatusApproved  lipgloss.Color
	StatusRejected  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	AccentColor      lipgloss.Color

	// Filter match highlighting.
	MatchBackground lipgloss.Color

	// Modal overlays.
	ModalForeground lipgloss.Color
	ModalBackground lipgloss.Color

	// Status bar messages.
	MessageInfo  lipgloss.Color
	MessageError lipgloss.Color
}

// StatusColor returns the color for a request status string.
// Recognizes the five lifecycle states and returns FaintText for
// unknown values.
func (theme Theme) StatusColor(status string) lipgloss.Color {
	switch status {
	case "draft":
		return theme.StatusDraft
	case "submitted":
		return theme.StatusSubmitted
	case "pending_approval":
		return theme.StatusPending
	case "approved":
		return theme.StatusApproved
	case "rejected":
		return theme.StatusRejected
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusDraft:     lipgloss.Color("245"), // gray
	StatusSubmitted: lipgloss.Color("75"),  // blue
	StatusPending:   lipgloss.Color("220"), // yellow/amber
	StatusApproved:  lipgloss.Color("114"), // green
	StatusRejected:  lipgloss.Color("196"), // red

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	AccentColor:      lipgloss.Color("220"),

	MatchBackground: lipgloss.Color("58"), // dark amber

	ModalForeground: lipgloss.Color("252"),
	ModalBackground: lipgloss.Color("237"),

	MessageInfo:  lipgloss.Color("114"),
	MessageError: lipgloss.Color("196"),
}
