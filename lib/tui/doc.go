// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides shared terminal user interface components for
// the procurement dashboard. Built on bubbletea (Elm architecture),
// these components handle common patterns: theming, scrollbars, fuzzy
// matching, modal overlays, and ANSI-aware text splicing.
//
// The dashboard (lib/dashui) imports this package for consistent look
// and behavior; the package itself knows nothing about purchase
// requests beyond their status names in the theme.
package tui
