// Package deck assembles segmented markdown into slide HTML.
package deck

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/hpungsan/deckhand/internal/render"
	"github.com/hpungsan/deckhand/internal/segment"
)

// SlideSeparator is the element placed between slides in assembled output.
const SlideSeparator = `<hr class="slide-break">`

// Options controls a conversion.
type Options struct {
	// PreserveNewlines collapses blank lines and whitespace-only runs
	// between tags in the assembled markup.
	PreserveNewlines bool

	// Sanitize runs the assembled markup through the HTML allow-list.
	Sanitize bool

	Budget segment.Budget
}

// DefaultOptions returns options with newline collapsing and sanitizing on
// and the default budget.
func DefaultOptions() Options {
	return Options{
		PreserveNewlines: true,
		Sanitize:         true,
		Budget:           segment.DefaultBudget(),
	}
}

// Stats summarizes a converted deck.
type Stats struct {
	Slides    int `json:"slides"`
	Fragments int `json:"fragments"`
	Tables    int `json:"tables"`
	Images    int `json:"images"`
}

// Result is the output of Convert.
type Result struct {
	HTML     string
	Slides   []string
	Document segment.Document
	Stats    Stats
}

// defaultRenderer is shared by every Converter built without WithRenderer.
// The goldmark pipeline is immutable once built.
var defaultRenderer = render.New()

// Converter turns markdown into slide HTML. It is safe for concurrent use
// when its renderer is.
type Converter struct {
	opts     Options
	renderer segment.Renderer
	logger   *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithRenderer overrides the default goldmark renderer.
func WithRenderer(r segment.Renderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// WithLogger sets the logger used for segmentation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// New creates a Converter. The budget in opts is validated.
func New(opts Options, options ...Option) (*Converter, error) {
	if err := opts.Budget.Validate(); err != nil {
		return nil, err
	}
	c := &Converter{opts: opts}
	for _, o := range options {
		o(c)
	}
	if c.renderer == nil {
		c.renderer = defaultRenderer
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

// Options returns the options the Converter was built with.
func (c *Converter) Options() Options {
	return c.opts
}

// Convert segments src and renders every section as one slide.
func (c *Converter) Convert(src string) (*Result, error) {
	doc, err := segment.Segment(src, c.opts.Budget, c.renderer, c.logger)
	if err != nil {
		return nil, err
	}

	slides := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		slide := s.HTML()
		if c.opts.PreserveNewlines {
			slide = collapseWhitespace(slide)
		}
		if c.opts.Sanitize {
			slide = render.Sanitize(slide)
		}
		slides = append(slides, slide)
	}

	res := &Result{
		HTML:     strings.Join(slides, "\n"+SlideSeparator+"\n"),
		Slides:   slides,
		Document: doc,
		Stats: Stats{
			Slides:    len(doc.Sections),
			Fragments: doc.FragmentCount(),
			Tables:    doc.CountKind(segment.KindTable),
			Images:    doc.CountKind(segment.KindImage),
		},
	}

	c.logger.Debug("converted deck",
		"slides", res.Stats.Slides,
		"fragments", res.Stats.Fragments,
		"tables", res.Stats.Tables,
		"images", res.Stats.Images,
	)
	return res, nil
}

var (
	betweenTags = regexp.MustCompile(`>[ \t]*\n\s*<`)
	blankLines  = regexp.MustCompile(`\n\s*\n`)
)

// collapseWhitespace removes blank lines and whitespace-only runs between
// tags, leaving one newline.
func collapseWhitespace(s string) string {
	s = blankLines.ReplaceAllString(s, "\n")
	s = betweenTags.ReplaceAllString(s, ">\n<")
	return strings.TrimSpace(s)
}

// SplitSlides recovers per-slide markup from assembled deck HTML.
func SplitSlides(html string) []string {
	parts := strings.Split(html, SlideSeparator)
	slides := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			slides = append(slides, p)
		}
	}
	return slides
}
