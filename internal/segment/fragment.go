// Package segment splits a flat markdown document into slide-sized sections.
//
// Segmentation is a single forward pass over the document lines. Each line is
// classified, turned into a Fragment through a Renderer, and packed into the
// current Section until a capacity budget or a structural boundary (page
// break, header, image, later chunks of a split table) forces a new one.
package segment

import (
	"strings"
	"unicode/utf8"
)

// Kind identifies what a Fragment holds.
type Kind int

const (
	KindContent Kind = iota
	KindTitle
	KindHeading
	KindImage
	KindTable
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindTitle:
		return "title"
	case KindHeading:
		return "heading"
	case KindImage:
		return "image"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Fragment is one classified unit of slide content.
type Fragment struct {
	Kind Kind

	// Text is what the capacity budget measures. For tables and images it is
	// the rendered markup, used only as a length proxy.
	Text string

	// HTML is the rendered markup for this fragment.
	HTML string
}

// Section is the ordered list of fragments that becomes one slide.
// A section holding a title holds nothing else.
type Section struct {
	Fragments []Fragment
}

// Len returns the number of fragments, the proxy for the slide's line count.
func (s Section) Len() int {
	return len(s.Fragments)
}

// Chars returns the total rune count of all fragment texts.
func (s Section) Chars() int {
	n := 0
	for _, f := range s.Fragments {
		n += CountChars(f.Text)
	}
	return n
}

// Words returns the total word count of all fragment texts.
func (s Section) Words() int {
	n := 0
	for _, f := range s.Fragments {
		n += CountWords(f.Text)
	}
	return n
}

// HTML joins the rendered markup of every fragment, one per line.
func (s Section) HTML() string {
	parts := make([]string, len(s.Fragments))
	for i, f := range s.Fragments {
		parts[i] = f.HTML
	}
	return strings.Join(parts, "\n")
}

// Document is the ordered sequence of sections produced by one conversion.
type Document struct {
	Sections []Section
}

// CountKind returns how many fragments of kind k the document holds.
func (d Document) CountKind(k Kind) int {
	n := 0
	for _, s := range d.Sections {
		for _, f := range s.Fragments {
			if f.Kind == k {
				n++
			}
		}
	}
	return n
}

// FragmentCount returns the number of fragments across all sections.
func (d Document) FragmentCount() int {
	n := 0
	for _, s := range d.Sections {
		n += s.Len()
	}
	return n
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// CountWords returns the number of whitespace-delimited, non-empty tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
