package ops

import (
	"context"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/segment"
)

// ConvertInput contains parameters for the Convert operation.
type ConvertInput struct {
	Markdown  string // required
	Overrides Overrides
}

// ConvertOutput contains the result of the Convert operation.
type ConvertOutput struct {
	HTML   string     `json:"html"`
	Slides []string   `json:"slides"`
	Stats  deck.Stats `json:"stats"`

	// Title is the text of the first title slide, if any.
	Title string `json:"title,omitempty"`
}

// Convert turns markdown into slide HTML without storing it.
func Convert(ctx context.Context, cfg *config.Config, input ConvertInput) (*ConvertOutput, error) {
	if input.Markdown == "" {
		return nil, errors.NewInvalidRequest("markdown is required")
	}
	if err := checkSize(cfg, input.Markdown); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("convert")
	}

	conv, err := newConverter(cfg, input.Overrides)
	if err != nil {
		return nil, err
	}
	res, err := conv.Convert(input.Markdown)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("convert")
	}

	return &ConvertOutput{
		HTML:   res.HTML,
		Slides: res.Slides,
		Stats:  res.Stats,
		Title:  firstTitle(res),
	}, nil
}

// firstTitle returns the text of the first title fragment in res.
func firstTitle(res *deck.Result) string {
	for _, s := range res.Document.Sections {
		for _, f := range s.Fragments {
			if f.Kind == segment.KindTitle {
				return f.Text
			}
		}
	}
	return ""
}
