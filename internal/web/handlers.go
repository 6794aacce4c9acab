package web

import (
	"database/sql"
	stderrors "errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/ops"
	"github.com/hpungsan/deckhand/internal/render"
)

// formOverhead is the room left for non-markdown fields in a preview form.
const formOverhead = 64 << 10

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /decks: list decks in a workspace.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	workspace := r.URL.Query().Get("workspace")
	if workspace == "" {
		workspace = "default"
	}

	input := ops.ListInput{
		Workspace:      workspace,
		AllWorkspaces:  parseBoolParam(r, "all_workspaces"),
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := ListPageData{
		PageData: PageData{
			Title:   "Decks",
			Version: h.renderer.version,
			Nav:     "decks",
		},
		Items:         result.Items,
		Pagination:    result.Pagination,
		Workspace:     workspace,
		AllWorkspaces: input.AllWorkspaces,
		Deleted:       input.IncludeDeleted,
	}
	p := result.Pagination
	if p.Offset > 0 {
		data.PrevURL = listURL(r, max(p.Offset-p.Limit, 0))
	}
	if p.HasMore {
		data.NextURL = listURL(r, p.Offset+p.Limit)
	}

	h.renderer.renderPage(w, r, "list", data)
}

// HandleDetail handles GET /decks/{id}: view a deck slide by slide.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("deck ID is required"))
		return
	}

	d, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		ID:             id,
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	name := displayName(d.NameRaw, d.ID)
	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   name,
			Version: h.renderer.version,
			Nav:     "decks",
		},
		Deck:        d,
		Slides:      trustedSlides(deck.SplitSlides(d.HTML)),
		DisplayName: name,
	})
}

// HandleDelete handles DELETE /decks/{id}: soft-delete a deck.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("deck ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX-style request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/decks")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}

	http.Redirect(w, r, "/decks", http.StatusFound)
}

// HandlePurge handles POST /decks/purge: permanently delete soft-deleted decks.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{
		Workspace: ptrString(r.FormValue("workspace")),
	}

	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"purged":  result.Purged,
			"message": result.Message,
		})
		return
	}

	http.Redirect(w, r, "/decks?include_deleted=true", http.StatusFound)
}

// HandlePreview handles GET /preview: an empty conversion form.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "preview", h.previewData())
}

// HandlePreviewSubmit handles POST /preview: convert pasted markdown
// without storing it.
func (h *Handlers) HandlePreviewSubmit(w http.ResponseWriter, r *http.Request) {
	if h.cfg.DeckMaxChars > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(h.cfg.DeckMaxChars)*4+formOverhead)
	}
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("form exceeds the maximum deck size"))
			return
		}
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	data := h.previewData()
	data.Markdown = r.FormValue("markdown")

	overrides, err := parseOverrides(r.PostForm)
	if err != nil {
		h.renderPreviewError(w, r, data, err)
		return
	}
	data.Budget = overrides.Apply(data.Budget)

	result, err := ops.Convert(r.Context(), h.cfg, ops.ConvertInput{
		Markdown:  data.Markdown,
		Overrides: overrides,
	})
	if err != nil {
		h.renderPreviewError(w, r, data, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data.Slides = trustedSlides(result.Slides)
	data.Stats = result.Stats
	h.renderPreview(w, r, http.StatusOK, data)
}

func (h *Handlers) previewData() PreviewPageData {
	return PreviewPageData{
		PageData: PageData{
			Title:   "Preview",
			Version: h.renderer.version,
			Nav:     "preview",
		},
		Budget: h.cfg.Budget(),
	}
}

// renderPreviewError keeps the submitted form on screen for browser requests.
func (h *Handlers) renderPreviewError(w http.ResponseWriter, r *http.Request, data PreviewPageData, err error) {
	var deckErr *errors.DeckError
	if wantsJSON(r) || !stderrors.As(err, &deckErr) || deckErr.Code == errors.ErrInternal {
		h.renderer.renderError(w, r, err)
		return
	}
	data.Error = deckErr.Message
	h.renderPreview(w, r, deckErr.Status, data)
}

// renderPreview renders the slide area alone when it is the swap target.
func (h *Handlers) renderPreview(w http.ResponseWriter, r *http.Request, status int, data PreviewPageData) {
	if r.Header.Get("HX-Target") == "slides" {
		h.renderer.renderBlock(w, status, "preview", "preview-slides", data)
		return
	}
	h.renderer.renderPageStatus(w, r, status, "preview", data)
}

// parseOverrides reads budget fields from a preview form. Blank fields keep
// the configured value.
func parseOverrides(form url.Values) (ops.Overrides, error) {
	var o ops.Overrides
	fields := []struct {
		name string
		dst  **int
	}{
		{"max_chars", &o.MaxChars},
		{"max_words", &o.MaxWords},
		{"max_lines", &o.MaxLines},
		{"table_char_budget", &o.TableCharBudget},
	}
	for _, f := range fields {
		s := strings.TrimSpace(form.Get(f.name))
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return o, errors.NewInvalidRequest(f.name + " must be an integer")
		}
		*f.dst = &v
	}
	return o, nil
}

// listURL returns the current list URL moved to offset.
func listURL(r *http.Request, offset int) template.URL {
	q := r.URL.Query()
	q.Set("offset", strconv.Itoa(offset))
	return template.URL("/decks?" + q.Encode())
}

// trustedSlides runs each slide through the allow-list and marks the result
// as safe markup for templates. Decks stored with sanitize off are covered.
func trustedSlides(slides []string) []template.HTML {
	out := make([]template.HTML, len(slides))
	for i, s := range slides {
		out[i] = template.HTML(render.Sanitize(s))
	}
	return out
}

// wantsJSON reports whether the client accepts a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// displayName returns the deck name if present, or a truncated ID.
func displayName(name *string, id string) string {
	if name != nil && *name != "" {
		return *name
	}
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
