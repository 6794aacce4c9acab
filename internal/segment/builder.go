package segment

import (
	"log/slog"
	"strings"
)

// Renderer turns markdown fragments into final markup.
// Implementations must be safe for concurrent use if shared across builders.
type Renderer interface {
	// Block renders a full markdown block.
	Block(src string) string

	// Inline renders a single line without its wrapping block element.
	Inline(src string) string

	// TaskItem renders one checkbox list item.
	TaskItem(checked bool, src string) string

	// Table renders pipe-table lines (header, separator, rows) as one table.
	Table(lines []string) string

	// Image renders a single image reference.
	Image(alt, src string) string
}

// builderState is the explicit scan state of a Builder.
type builderState int

const (
	stateIdle builderState = iota
	stateBufferingTable
)

// Builder drives one segmentation pass. It owns the current section, the
// table buffer, and the emitted sections; it is not safe for concurrent use
// and is discarded after Finish.
type Builder struct {
	budget   Budget
	renderer Renderer
	logger   *slog.Logger

	state    builderState
	table    []string
	list     *taskList
	current  []Fragment
	sections []Section
	line     int
}

// NewBuilder creates a Builder. The budget is validated; a nil logger
// discards output.
func NewBuilder(budget Budget, r Renderer, logger *slog.Logger) (*Builder, error) {
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{
		budget:   budget,
		renderer: r,
		logger:   logger,
	}, nil
}

// Segment splits src into sections in a single pass.
func Segment(src string, budget Budget, r Renderer, logger *slog.Logger) (Document, error) {
	b, err := NewBuilder(budget, r, logger)
	if err != nil {
		return Document{}, err
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	for _, line := range strings.Split(src, "\n") {
		b.Feed(line)
	}
	return b.Finish(), nil
}

// Feed processes one input line.
func (b *Builder) Feed(raw string) {
	b.line++
	line := Classify(raw)

	if line.Kind != LineTaskItem {
		b.closeList()
	}

	// Hard boundaries and table buffering come first.
	switch line.Kind {
	case LinePageBreak:
		b.flushTable()
		b.closeSection()
		b.logger.Debug("page break", "line", b.line, "sections", len(b.sections))
		return
	case LineTitle:
		b.flushTable()
		b.closeSection()
		b.sections = append(b.sections, Section{Fragments: []Fragment{b.titleFragment(line)}})
		return
	case LineHeading:
		b.flushTable()
		b.closeSection()
		b.current = append(b.current, b.headingFragment(line))
		return
	case LineTableRow:
		b.table = append(b.table, line.Raw)
		b.state = stateBufferingTable
		return
	}

	// Any other line ends an open table before being handled itself.
	b.flushTable()

	switch line.Kind {
	case LineImage:
		b.appendImage(line)
	case LineBrokenImage:
		b.logger.Debug("dropped image without target", "line", b.line, "text", line.Raw)
	case LineTaskItem, LineContent:
		b.appendContent(line)
	}
}

// Finish flushes any open table and section and returns the document.
func (b *Builder) Finish() Document {
	b.flushTable()
	b.closeSection()

	doc := Document{Sections: b.sections}
	b.sections = nil
	return doc
}

// section returns the current section as a value for budget checks.
func (b *Builder) section() Section {
	return Section{Fragments: b.current}
}

// closeSection moves the current section to the output. Empty sections are
// never emitted.
func (b *Builder) closeSection() {
	b.closeList()
	if len(b.current) == 0 {
		return
	}
	b.sections = append(b.sections, Section{Fragments: b.current})
	b.current = nil
}

// appendContent packs a plain content or task item line into the current
// section, closing it first if the line would exceed the budget.
func (b *Builder) appendContent(line Line) {
	candidate := line.Raw
	if line.Kind == LineTaskItem {
		candidate = line.Text
		// A merged item also brings the separator appendTaskItem writes.
		if b.list != nil {
			candidate = "\n" + line.Text
		}
	}

	if b.budget.ShouldCreateNewSection(candidate, b.section()) {
		b.logger.Debug("budget exceeded, starting new section", "line", b.line)
		b.closeSection()
	}

	if line.Kind == LineTaskItem {
		b.appendTaskItem(line)
		return
	}
	b.current = append(b.current, Fragment{
		Kind: KindContent,
		Text: line.Raw,
		HTML: b.renderer.Block(line.Raw),
	})
}

// appendImage adds an image and always ends the section after it, so no
// content ever follows an image on the same slide.
func (b *Builder) appendImage(line Line) {
	html := b.renderer.Image(line.Text, line.Target)
	frag := Fragment{Kind: KindImage, Text: html, HTML: html}

	if len(b.current) == 0 {
		b.sections = append(b.sections, Section{Fragments: []Fragment{frag}})
		return
	}

	if b.budget.ShouldCreateNewSection(frag.Text, b.section()) {
		b.closeSection()
	}
	b.current = append(b.current, frag)
	b.closeSection()
}

// flushTable resolves the table buffer, if any, into the current section.
// The first chunk may share the current section when it fits; every later
// chunk starts its own section.
func (b *Builder) flushTable() {
	if b.state != stateBufferingTable {
		return
	}
	rows := b.table
	b.table = nil
	b.state = stateIdle

	fragments := resolveTable(rows, b.budget, b.renderer)
	if len(fragments) == 0 {
		b.logger.Debug("dropped malformed table", "line", b.line, "rows", len(rows))
		return
	}

	for i, frag := range fragments {
		if i > 0 || b.budget.ShouldCreateNewSection(frag.Text, b.section()) {
			b.closeSection()
		}
		b.current = append(b.current, frag)
	}
	if len(fragments) > 1 {
		b.logger.Debug("split table", "line", b.line, "rows", len(rows), "chunks", len(fragments))
	}
}

func (b *Builder) titleFragment(line Line) Fragment {
	return Fragment{
		Kind: KindTitle,
		Text: line.Text,
		HTML: "<h1>" + b.renderer.Inline(line.Text) + "</h1>",
	}
}

func (b *Builder) headingFragment(line Line) Fragment {
	return Fragment{
		Kind: KindHeading,
		Text: line.Text,
		HTML: "<h2>" + b.renderer.Inline(line.Text) + "</h2>",
	}
}
