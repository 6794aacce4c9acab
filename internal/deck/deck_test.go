package deck

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/segment"
)

func newConverter(t *testing.T, opts Options, options ...Option) *Converter {
	t.Helper()
	c, err := New(opts, options...)
	require.NoError(t, err)
	return c
}

func TestConvert_WorkedExample(t *testing.T) {
	c := newConverter(t, DefaultOptions())

	res, err := c.Convert("# Title\n\nSome text\n\n## Heading\nLine1\nLine2\n===\nFinal")
	require.NoError(t, err)

	require.Equal(t, []string{
		"<h1>Title</h1>",
		"<p>Some text</p>",
		"<h2>Heading</h2>\n<p>Line1</p>\n<p>Line2</p>",
		"<p>Final</p>",
	}, res.Slides)

	require.Equal(t, strings.Join(res.Slides, "\n"+SlideSeparator+"\n"), res.HTML)
	require.Equal(t, 3, strings.Count(res.HTML, SlideSeparator))
	require.Equal(t, Stats{Slides: 4, Fragments: 6}, res.Stats)
}

func TestConvert_Stats(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# Deck\n![a](a.png)\n| h | v |\n|---|---|\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "| r%d | %d |\n", i, i)
	}

	c := newConverter(t, DefaultOptions())
	res, err := c.Convert(sb.String())
	require.NoError(t, err)

	// 12 table lines over the 7 line budget split into ceil(10/5) chunks.
	require.Equal(t, 2, res.Stats.Tables)
	require.Equal(t, 1, res.Stats.Images)
	require.Equal(t, 4, res.Stats.Slides)
	require.Equal(t, res.Stats.Slides, len(res.Slides))

	for _, slide := range res.Slides[2:] {
		require.Contains(t, slide, "<th>h</th>")
		require.Contains(t, slide, `<div class="table-wrapper">`)
	}
}

func TestConvert_TaskListSurvivesSanitize(t *testing.T) {
	c := newConverter(t, DefaultOptions())

	res, err := c.Convert("- [x] a\n- [ ] b\n- [x] c")
	require.NoError(t, err)
	require.Len(t, res.Slides, 1)

	slide := res.Slides[0]
	require.True(t, strings.HasPrefix(slide, segment.TaskListOpen))
	require.True(t, strings.HasSuffix(slide, segment.TaskListClose))
	require.Equal(t, 3, strings.Count(slide, `type="checkbox"`))
	require.Equal(t, 2, strings.Count(slide, `checked=""`))
}

func TestConvert_Sanitize(t *testing.T) {
	src := "intro\n<script>alert(1)</script>\n[x](javascript:alert(1))"

	t.Run("on", func(t *testing.T) {
		c := newConverter(t, DefaultOptions())
		res, err := c.Convert(src)
		require.NoError(t, err)
		require.NotContains(t, res.HTML, "<script>")
		require.NotContains(t, res.HTML, "javascript:")
	})

	t.Run("off", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Sanitize = false
		c := newConverter(t, opts)
		res, err := c.Convert(src)
		require.NoError(t, err)
		require.Contains(t, res.HTML, "<script>alert(1)</script>")
	})
}

// spacedRenderer emits blank lines and indentation between tags.
type spacedRenderer struct{}

func (spacedRenderer) Block(src string) string { return "<div>\n\n   <p>" + src + "</p>\n\n\n</div>" }
func (spacedRenderer) Inline(src string) string { return src }
func (spacedRenderer) TaskItem(_ bool, s string) string { return "<li>" + s + "</li>" }
func (spacedRenderer) Table(lines []string) string { return strings.Join(lines, "\n") }
func (spacedRenderer) Image(alt, src string) string { return `<img src="` + src + `" alt="` + alt + `">` }

func TestConvert_PreserveNewlines(t *testing.T) {
	t.Run("on collapses", func(t *testing.T) {
		c := newConverter(t, DefaultOptions(), WithRenderer(spacedRenderer{}))
		res, err := c.Convert("x")
		require.NoError(t, err)
		require.Equal(t, "<div>\n<p>x</p>\n</div>", res.HTML)
	})

	t.Run("off keeps renderer output", func(t *testing.T) {
		opts := DefaultOptions()
		opts.PreserveNewlines = false
		opts.Sanitize = false
		c := newConverter(t, opts, WithRenderer(spacedRenderer{}))
		res, err := c.Convert("x")
		require.NoError(t, err)
		require.Equal(t, "<div>\n\n   <p>x</p>\n\n\n</div>", res.HTML)
	})
}

func TestNew_InvalidBudget(t *testing.T) {
	opts := DefaultOptions()
	opts.Budget.MaxFragments = 0

	_, err := New(opts)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidBudget))
}

func TestNew_SharesDefaultRenderer(t *testing.T) {
	a := newConverter(t, DefaultOptions())
	b := newConverter(t, DefaultOptions())
	require.Same(t, defaultRenderer, a.renderer)
	require.Same(t, a.renderer, b.renderer)

	custom := newConverter(t, DefaultOptions(), WithRenderer(spacedRenderer{}))
	require.Equal(t, spacedRenderer{}, custom.renderer)
}

func TestConvert_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := newConverter(t, DefaultOptions(), WithLogger(logger))
	_, err := c.Convert("a\n![broken]()\n| lonely |\nb")
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "dropped image without target")
	require.Contains(t, out, "dropped malformed table")
	require.Contains(t, out, "converted deck")
}

func TestConvert_Empty(t *testing.T) {
	c := newConverter(t, DefaultOptions())
	res, err := c.Convert("")
	require.NoError(t, err)
	require.Empty(t, res.HTML)
	require.Empty(t, res.Slides)
}

func TestSplitSlides(t *testing.T) {
	c := newConverter(t, DefaultOptions())
	res, err := c.Convert("# A\n## B\ntext\n===\n![i](i.png)\nlast")
	require.NoError(t, err)

	require.Equal(t, res.Slides, SplitSlides(res.HTML))
	require.Empty(t, SplitSlides(""))
	require.Equal(t, []string{"<p>one</p>"}, SplitSlides("\n"+SlideSeparator+"\n<p>one</p>\n"))
}

func TestConverter_ConcurrentUse(t *testing.T) {
	c := newConverter(t, DefaultOptions())
	src := "# T\n## H\n- [x] a\n| a | b |\n|---|---|\n| 1 | 2 |"

	want, err := c.Convert(src)
	require.NoError(t, err)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			res, err := c.Convert(src)
			if err == nil && res.HTML != want.HTML {
				err = fmt.Errorf("output differs")
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}
}
