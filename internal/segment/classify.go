package segment

import (
	"regexp"
	"strings"
)

// PageBreak is the sentinel line that forces a slide boundary.
const PageBreak = "==="

// LineKind is the classification of a single input line.
type LineKind int

const (
	LineBlank LineKind = iota
	LinePageBreak
	LineTitle
	LineHeading
	LineTableRow
	LineTaskItem
	LineImage
	LineBrokenImage // shaped like an image but without a usable target
	LineContent
)

// String returns the lowercase name of the line kind.
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LinePageBreak:
		return "page_break"
	case LineTitle:
		return "title"
	case LineHeading:
		return "heading"
	case LineTableRow:
		return "table_row"
	case LineTaskItem:
		return "task_item"
	case LineImage:
		return "image"
	case LineBrokenImage:
		return "broken_image"
	case LineContent:
		return "content"
	default:
		return "unknown"
	}
}

// Line is a classified input line with its extracted payload.
type Line struct {
	Kind LineKind

	// Raw is the trimmed line.
	Raw string

	// Text is the header text, task item text, or image label.
	Text string

	// Target is the image URL for LineImage.
	Target string

	// Checked is the checkbox state for LineTaskItem.
	Checked bool
}

var (
	// titlePattern matches "# Title". The second character must be blank, so
	// "## Heading" never matches.
	titlePattern = regexp.MustCompile(`^#[ \t]+(\S.*?)[ \t]*$`)

	headingPattern = regexp.MustCompile(`^##[ \t]+(\S.*?)[ \t]*$`)

	// taskPattern matches "- [x] item" and "* [ ] item". Only x, X and a
	// space are valid checkbox states.
	taskPattern = regexp.MustCompile(`^[-*][ \t]+\[([ xX])\](?:[ \t]+(.*))?$`)

	// tableSeparatorPattern matches delimiter rows such as "---|---" or
	// ":--|--:" that do not start with a pipe.
	tableSeparatorPattern = regexp.MustCompile(`^\|?[ \t]*:?-+:?[ \t]*(\|[ \t]*:?-+:?[ \t]*)+\|?$`)

	imageShapePattern = regexp.MustCompile(`^!\[.*\]\(.*\)$`)

	// imagePattern captures the label and target of "![label](target "title")".
	imagePattern = regexp.MustCompile(`^!\[([^\]]*)\]\([ \t]*([^)\s]+)(?:[ \t]+"[^"]*")?[ \t]*\)$`)
)

// Classify tags one line. It is a pure function of the line: state such as an
// open table or task list is tracked by the Builder, not here.
func Classify(raw string) Line {
	line := strings.TrimSpace(raw)
	result := Line{Kind: LineContent, Raw: line}

	switch {
	case line == "":
		result.Kind = LineBlank
		return result
	case line == PageBreak:
		result.Kind = LinePageBreak
		return result
	}

	if m := titlePattern.FindStringSubmatch(line); m != nil {
		result.Kind = LineTitle
		result.Text = m[1]
		return result
	}
	if m := headingPattern.FindStringSubmatch(line); m != nil {
		result.Kind = LineHeading
		result.Text = m[1]
		return result
	}
	if IsTableRow(line) {
		result.Kind = LineTableRow
		return result
	}
	if m := taskPattern.FindStringSubmatch(line); m != nil {
		result.Kind = LineTaskItem
		result.Checked = m[1] != " "
		result.Text = strings.TrimSpace(m[2])
		return result
	}
	if imageShapePattern.MatchString(line) {
		if m := imagePattern.FindStringSubmatch(line); m != nil {
			result.Kind = LineImage
			result.Text = m[1]
			result.Target = m[2]
			return result
		}
		result.Kind = LineBrokenImage
		return result
	}

	return result
}

// IsTableRow reports whether a trimmed line belongs to a pipe table.
func IsTableRow(line string) bool {
	return strings.HasPrefix(line, "|") || tableSeparatorPattern.MatchString(line)
}
