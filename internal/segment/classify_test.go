package segment

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    LineKind
		text    string
		target  string
		checked bool
	}{
		{name: "empty", line: "", kind: LineBlank},
		{name: "whitespace only", line: " \t ", kind: LineBlank},
		{name: "page break", line: "===", kind: LinePageBreak},
		{name: "page break with padding", line: "  ===  ", kind: LinePageBreak},
		{name: "four equals is content", line: "====", kind: LineContent},
		{name: "title", line: "# Quarterly Review", kind: LineTitle, text: "Quarterly Review"},
		{name: "title trailing spaces", line: "# Review   ", kind: LineTitle, text: "Review"},
		{name: "hash without blank", line: "#hashtag", kind: LineContent},
		{name: "heading", line: "## Agenda", kind: LineHeading, text: "Agenda"},
		{name: "h3 is content", line: "### Detail", kind: LineContent},
		{name: "table row", line: "| a | b |", kind: LineTableRow},
		{name: "table separator with pipes", line: "|---|:---:|", kind: LineTableRow},
		{name: "table separator without leading pipe", line: "---|---", kind: LineTableRow},
		{name: "aligned separator", line: ":--|--:", kind: LineTableRow},
		{name: "thematic break is content", line: "---", kind: LineContent},
		{name: "checked task", line: "- [x] ship it", kind: LineTaskItem, text: "ship it", checked: true},
		{name: "checked task upper", line: "* [X] ship it", kind: LineTaskItem, text: "ship it", checked: true},
		{name: "unchecked task", line: "- [ ] write docs", kind: LineTaskItem, text: "write docs"},
		{name: "invalid checkbox", line: "- [y] maybe", kind: LineContent},
		{name: "plain bullet", line: "- just a bullet", kind: LineContent},
		{name: "image", line: "![chart](https://example.com/c.png)", kind: LineImage, text: "chart", target: "https://example.com/c.png"},
		{name: "image with title", line: `![logo](/img/logo.svg "Logo")`, kind: LineImage, text: "logo", target: "/img/logo.svg"},
		{name: "image empty label", line: "![](a.png)", kind: LineImage, target: "a.png"},
		{name: "image without target", line: "![broken]()", kind: LineBrokenImage},
		{name: "inline image is content", line: "see ![x](y.png) here", kind: LineContent},
		{name: "plain", line: "Hello world", kind: LineContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			if got.Kind != tt.kind {
				t.Fatalf("Classify(%q).Kind = %v, want %v", tt.line, got.Kind, tt.kind)
			}
			if got.Text != tt.text {
				t.Errorf("Text = %q, want %q", got.Text, tt.text)
			}
			if got.Target != tt.target {
				t.Errorf("Target = %q, want %q", got.Target, tt.target)
			}
			if got.Checked != tt.checked {
				t.Errorf("Checked = %v, want %v", got.Checked, tt.checked)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	lines := []string{"| a | b |", "- [x] done", "## Heading", "![a](b.png)", "text"}
	for _, line := range lines {
		first := Classify(line)
		for i := 0; i < 3; i++ {
			if again := Classify(line); again != first {
				t.Errorf("Classify(%q) changed between calls: %+v vs %+v", line, first, again)
			}
		}
	}
}

func TestClassify_TrimsRaw(t *testing.T) {
	got := Classify("   indented text  ")
	if got.Raw != "indented text" {
		t.Errorf("Raw = %q, want %q", got.Raw, "indented text")
	}
}
