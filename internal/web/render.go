package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/ops"
	"github.com/hpungsan/deckhand/internal/segment"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "decks", "preview"
}

// ListPageData is the template data for the deck list page.
type ListPageData struct {
	PageData
	Items         []deck.Summary
	Pagination    ops.Pagination
	Workspace     string
	AllWorkspaces bool
	Deleted       bool
	PrevURL       template.URL
	NextURL       template.URL
}

// DetailPageData is the template data for the deck viewer.
type DetailPageData struct {
	PageData
	Deck        *ops.FetchOutput
	Slides      []template.HTML
	DisplayName string
}

// PreviewPageData is the template data for the preview page.
type PreviewPageData struct {
	PageData
	Markdown string
	Budget   segment.Budget
	Slides   []template.HTML
	Stats    deck.Stats
	Error    string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// pages are the templates rendered inside layout.html.
var pages = []string{"list", "detail", "preview", "error"}

// Renderer executes the page templates. Each page is parsed into its own
// clone of the layout so the pages can all define a "content" block.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer parses layout.html and every page from templateFS. It panics
// on a malformed template since they are embedded at build time.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	layout := template.Must(template.New("layout").Funcs(template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"formatTime":  formatTime,
		"formatChars": formatChars,
		"deref":       deref,
		"hasValue":    hasValue,
		"displayName": displayName,
	}).ParseFS(templateFS, "layout.html"))

	r := &Renderer{templates: make(map[string]*template.Template, len(pages)), version: version}
	for _, page := range pages {
		t := template.Must(layout.Clone())
		r.templates[page] = template.Must(t.ParseFS(templateFS, page+".html"))
	}
	return r
}

func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus writes the full page, or only its "content" block when
// the request came from an HX-Request swap.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if isPartial(req) {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock executes one block of a page into a buffer first, so a
// template error still produces a clean 500.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	var buf bytes.Buffer
	t, ok := r.templates[page]
	if !ok {
		log.Printf("unknown page template %q", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		log.Printf("render %s/%s: %v", page, block, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func isPartial(req *http.Request) bool {
	return req != nil && req.Header.Get("HX-Request") == "true"
}

// renderError answers with the error as a fragment, JSON or an error page,
// depending on what the client asked for. Internal errors are logged and
// reported without detail.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var de *errors.DeckError
	if !stderrors.As(err, &de) {
		de = errors.NewInternal(err)
	}
	msg := de.Message
	if de.Code == errors.ErrInternal {
		log.Printf("internal error: %v", err)
		msg = "an internal error occurred"
	}

	switch {
	case isPartial(req):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(de.Status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(msg))
	case wantsJSON(req):
		renderJSON(w, de.Status, map[string]any{
			"error": map[string]any{"code": string(de.Code), "message": msg, "status": de.Status},
		})
	default:
		r.renderPageStatus(w, req, de.Status, "error", ErrorPageData{
			PageData:   PageData{Title: fmt.Sprintf("Error %d", de.Status), Version: r.version},
			StatusCode: de.Status,
			Message:    msg,
		})
	}
}

func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

var numberPrinter = message.NewPrinter(language.English)

// formatChars groups thousands: 1234567 -> "1,234,567".
func formatChars(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

// deref unwraps the optional fields decks carry; nil becomes the zero value.
func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return ""
		}
		return *p
	case *int64:
		if p == nil {
			return int64(0)
		}
		return *p
	case nil:
		return ""
	}
	return v
}

func hasValue(v any) bool {
	switch p := v.(type) {
	case *string:
		return p != nil
	case *int64:
		return p != nil
	}
	return v != nil
}
