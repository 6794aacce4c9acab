// Package render turns markdown fragments into HTML for slides.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders fragments with goldmark. It is immutable after New and
// safe for concurrent use.
type Markdown struct {
	md goldmark.Markdown
}

// New creates a Markdown renderer with GFM tables, strikethrough and
// autolinks. Raw HTML is passed through; run Sanitize on untrusted output.
func New() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.Linkify,
			),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Block renders src as one or more markdown blocks.
func (m *Markdown) Block(src string) string {
	return strings.TrimRight(m.convert(src), "\n")
}

// Inline renders src without its wrapping paragraph. Lines that goldmark
// reads as something other than a single paragraph (e.g. "1. Intro") fall
// back to escaped text.
func (m *Markdown) Inline(src string) string {
	out := strings.TrimSpace(m.convert(src))
	inner, ok := strings.CutPrefix(out, "<p>")
	if !ok {
		return template.HTMLEscapeString(src)
	}
	inner, ok = strings.CutSuffix(inner, "</p>")
	if !ok || strings.Contains(inner, "<p>") {
		return template.HTMLEscapeString(src)
	}
	return inner
}

// TaskItem renders one checkbox list item.
func (m *Markdown) TaskItem(checked bool, src string) string {
	box := `<input type="checkbox" disabled>`
	if checked {
		box = `<input type="checkbox" disabled checked>`
	}
	return `<li class="task-list-item">` + box + " " + m.Inline(src) + "</li>"
}

// Table renders pipe-table lines as one table inside a scroll wrapper.
func (m *Markdown) Table(lines []string) string {
	out := strings.TrimRight(m.convert(strings.Join(lines, "\n")), "\n")
	return `<div class="table-wrapper">` + "\n" + out + "\n</div>"
}

// Image renders a single image element.
func (m *Markdown) Image(alt, src string) string {
	return `<img src="` + template.HTMLEscapeString(src) + `" alt="` + template.HTMLEscapeString(alt) + `">`
}

func (m *Markdown) convert(src string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return template.HTMLEscapeString(src)
	}
	return buf.String()
}
