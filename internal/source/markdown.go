package source

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"

	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/segment"
)

// Document is a decoded deck source.
type Document struct {
	Markdown string
	MIME     string

	// Title is the HTML <title>, when the source had one.
	Title string
}

// thematicBreak matches the horizontal rules html-to-markdown emits for <hr>.
var thematicBreak = regexp.MustCompile(`(?m)^[ \t]*(?:\* \* \*|- - -|\*{3,}|-{3,}|_{3,})[ \t]*$`)

var (
	reScript = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyle  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
)

// ToMarkdown decodes data and converts it to markdown. HTML sources are
// converted with html-to-markdown, and their <hr> rules become slide breaks.
// Types other than markdown, plain text and HTML are rejected.
func ToMarkdown(data []byte, filename string) (*Document, error) {
	mime := Detect(data, filename)
	if !Supported(mime) {
		return nil, errors.NewUnsupportedSource(mime)
	}

	text := Decode(data)
	if mime != MIMEHTML && mime != MIMEXHTML {
		return &Document{Markdown: text, MIME: mime}, nil
	}

	md, err := htmlToMarkdown(removeScriptAndStyle(text))
	if err != nil {
		return nil, fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return &Document{
		Markdown: thematicBreak.ReplaceAllString(md, segment.PageBreak),
		MIME:     mime,
		Title:    extractTitle(text),
	}, nil
}

func htmlToMarkdown(s string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
	return conv.ConvertString(s)
}

func removeScriptAndStyle(s string) string {
	s = reScript.ReplaceAllString(s, "")
	return reStyle.ReplaceAllString(s, "")
}

// extractTitle returns the text of the first <title> element.
func extractTitle(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}

	var title string
	var find func(*html.Node)
	find = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	return title
}
