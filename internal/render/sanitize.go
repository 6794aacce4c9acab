package render

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// allowedAttrs lists permitted tags and, per tag, permitted attributes.
var allowedAttrs = map[string]map[string]bool{
	"p": nil, "br": nil, "h1": nil, "h2": nil, "h3": nil, "h4": nil, "h5": nil, "h6": nil,
	"strong": nil, "em": nil, "b": nil, "i": nil, "del": nil, "s": nil, "sup": nil, "sub": nil,
	"blockquote": nil, "pre": nil, "ol": {"start": true}, "thead": nil, "tbody": nil, "tr": nil,

	"hr":    {"class": true},
	"code":  {"class": true},
	"span":  {"class": true},
	"div":   {"class": true},
	"ul":    {"class": true},
	"li":    {"class": true},
	"a":     {"href": true, "title": true},
	"img":   {"src": true, "alt": true, "title": true},
	"input": {"type": true, "checked": true, "disabled": true},
	"table": nil,
	"th":    {"style": true, "align": true},
	"td":    {"style": true, "align": true},
}

// droppedContent lists elements removed together with everything inside them.
var droppedContent = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true,
	"embed": true, "template": true, "textarea": true, "title": true,
}

var (
	alignStyle = regexp.MustCompile(`^text-align:\s*(left|right|center);?$`)
	classValue = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)
)

// Sanitize strips markup outside the allow-list. Unknown tags are removed but
// their text is kept; comments and doctypes are dropped.
func Sanitize(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()

		case html.TextToken:
			if skip == 0 {
				b.WriteString(html.EscapeString(string(z.Text())))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if droppedContent[tok.Data] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 {
				continue
			}
			attrs, ok := allowedAttrs[tok.Data]
			if !ok {
				continue
			}
			tok.Attr = filterAttrs(tok.Data, tok.Attr, attrs)
			if tok.Data == "input" && !isCheckbox(tok.Attr) {
				continue
			}
			b.WriteString(tok.String())

		case html.EndTagToken:
			tok := z.Token()
			if droppedContent[tok.Data] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 {
				continue
			}
			if _, ok := allowedAttrs[tok.Data]; ok {
				b.WriteString(tok.String())
			}
		}
	}
}

func filterAttrs(tag string, attrs []html.Attribute, allowed map[string]bool) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Namespace != "" || !allowed[a.Key] {
			continue
		}
		switch a.Key {
		case "href", "src":
			if !safeURL(a.Val) {
				continue
			}
		case "style":
			if !alignStyle.MatchString(a.Val) {
				continue
			}
		case "class":
			if !classValue.MatchString(a.Val) {
				continue
			}
		case "type":
			if tag == "input" && a.Val != "checkbox" {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func isCheckbox(attrs []html.Attribute) bool {
	for _, a := range attrs {
		if a.Key == "type" {
			return true
		}
	}
	return false
}

// safeURL accepts relative references and http, https and mailto URLs.
func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}
