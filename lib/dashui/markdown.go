// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/Philbert250/Procure-to-Pay/lib/tui"
)

// The parser configuration never changes and the goldmark Parser is
// safe to share; parsing creates per-call state via Parse(reader).
var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParserInstance
}

// renderTerminalMarkdown renders a request description as styled
// terminal output. Soft line breaks become spaces so hard-wrapped
// source reflows at any pane width; headings, lists, and code blocks
// keep their structure.
func renderTerminalMarkdown(input string, theme tui.Theme, width int) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// Force the ANSI256 profile: this output always targets the
	// bubbletea screen, and auto-detection would strip color when
	// stderr is not a TTY (tests, piped runs).
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &markdownRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// markdownRenderer walks the goldmark AST directly instead of using
// goldmark's renderer interface: terminal rendering needs
// accumulate-then-wrap semantics, where a paragraph's inline content
// collects in a buffer and word-wraps as a unit when the block closes.
type markdownRenderer struct {
	source []byte
	theme  tui.Theme
	width  int

	output strings.Builder
	inline strings.Builder

	// Inline style counters rather than booleans so nested emphasis
	// unwinds correctly.
	boldCount   int
	italicCount int

	listDepth   int
	listOrdered []bool
	listCounter []int

	lipRenderer *lipgloss.Renderer
}

func (renderer *markdownRenderer) newStyle() lipgloss.Style {
	return renderer.lipRenderer.NewStyle()
}

func (renderer *markdownRenderer) contentWidth() int {
	width := renderer.width - renderer.listDepth*2
	if width < 10 {
		width = 10
	}
	return width
}

func (renderer *markdownRenderer) flushInline(prefix string) {
	content := renderer.inline.String()
	renderer.inline.Reset()
	if content == "" {
		return
	}
	wrapped := ansi.Wrap(content, renderer.contentWidth(), " ,.;-+|")
	indent := strings.Repeat("  ", renderer.listDepth)
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 && prefix != "" {
			renderer.output.WriteString(prefix)
		} else {
			renderer.output.WriteString(indent)
		}
		renderer.output.WriteString(line)
		renderer.output.WriteString("\n")
	}
}

func (renderer *markdownRenderer) styledText(content string) string {
	style := renderer.newStyle().Foreground(renderer.theme.NormalText)
	if renderer.boldCount > 0 {
		style = style.Bold(true)
	}
	if renderer.italicCount > 0 {
		style = style.Italic(true)
	}
	return style.Render(content)
}

// highlightCode syntax-highlights fenced code via Chroma, falling back
// to FaintText plain rendering for unknown languages.
func (renderer *markdownRenderer) highlightCode(code, language string) string {
	if language != "" {
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err == nil {
			return buffer.String()
		}
	}
	return renderer.newStyle().Foreground(renderer.theme.FaintText).Render(code)
}

func (renderer *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindHeading:
		if !entering {
			heading := renderer.inline.String()
			renderer.inline.Reset()
			renderer.output.WriteString(renderer.newStyle().
				Foreground(renderer.theme.HeaderForeground).
				Bold(true).
				Render(heading))
			renderer.output.WriteString("\n\n")
		}

	case ast.KindParagraph:
		if !entering {
			prefix := ""
			if renderer.listDepth > 0 {
				prefix = renderer.listItemPrefix()
			}
			renderer.flushInline(prefix)
			if renderer.listDepth == 0 {
				renderer.output.WriteString("\n")
			}
		}

	case ast.KindTextBlock:
		if !entering {
			renderer.flushInline(renderer.listItemPrefix())
		}

	case ast.KindList:
		list := node.(*ast.List)
		if entering {
			renderer.listDepth++
			renderer.listOrdered = append(renderer.listOrdered, list.IsOrdered())
			renderer.listCounter = append(renderer.listCounter, list.Start)
		} else {
			renderer.listDepth--
			renderer.listOrdered = renderer.listOrdered[:len(renderer.listOrdered)-1]
			renderer.listCounter = renderer.listCounter[:len(renderer.listCounter)-1]
			if renderer.listDepth == 0 {
				renderer.output.WriteString("\n")
			}
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			var code strings.Builder
			for i := 0; i < block.Lines().Len(); i++ {
				segment := block.Lines().At(i)
				code.Write(segment.Value(renderer.source))
			}
			highlighted := renderer.highlightCode(code.String(), string(block.Language(renderer.source)))
			for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
				renderer.output.WriteString("  " + line + "\n")
			}
			renderer.output.WriteString("\n")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindThematicBreak:
		if entering {
			renderer.output.WriteString(renderer.newStyle().
				Foreground(renderer.theme.BorderColor).
				Render(strings.Repeat("─", renderer.contentWidth())))
			renderer.output.WriteString("\n\n")
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			renderer.inline.WriteString(renderer.styledText(string(textNode.Segment.Value(renderer.source))))
			if textNode.SoftLineBreak() {
				renderer.inline.WriteString(" ")
			}
			if textNode.HardLineBreak() {
				renderer.inline.WriteString("\n")
			}
		}

	case ast.KindEmphasis:
		emphasis := node.(*ast.Emphasis)
		delta := 1
		if !entering {
			delta = -1
		}
		if emphasis.Level >= 2 {
			renderer.boldCount += delta
		} else {
			renderer.italicCount += delta
		}

	case ast.KindCodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				if textNode, ok := child.(*ast.Text); ok {
					code.Write(textNode.Segment.Value(renderer.source))
				}
			}
			renderer.inline.WriteString(renderer.newStyle().
				Foreground(renderer.theme.AccentColor).
				Render(code.String()))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

// listItemPrefix renders the bullet or number for the current list
// item and advances the ordered counter.
func (renderer *markdownRenderer) listItemPrefix() string {
	if renderer.listDepth == 0 {
		return ""
	}
	indent := strings.Repeat("  ", renderer.listDepth-1)
	top := len(renderer.listOrdered) - 1
	if renderer.listOrdered[top] {
		n := renderer.listCounter[top]
		renderer.listCounter[top]++
		return indent + renderer.newStyle().
			Foreground(renderer.theme.FaintText).
			Render(fmt.Sprintf("%d. ", n))
	}
	return indent + renderer.newStyle().
		Foreground(renderer.theme.FaintText).
		Render("• ")
}
