package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/source"
)

// maxBytesPerChar bounds how many bytes import reads per allowed source
// character (UTF-8 needs at most 4).
const maxBytesPerChar = 4

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path      string    // required
	Workspace string    // default: "default"
	Name      *string   // default: file name without extension
	Title     *string   // default: HTML <title>, then first title slide, then name
	Mode      StoreMode // default: StoreModeError
	Overrides Overrides
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	StoreOutput
	Path string `json:"path"`
	MIME string `json:"mime"`
}

// Import reads a markdown, text or HTML file and stores it as a deck.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	data, err := readSource(input.Path, cfg)
	if err != nil {
		return nil, err
	}

	doc, err := source.ToMarkdown(data, input.Path)
	if err != nil {
		if _, ok := err.(*errors.DeckError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(err)
	}
	if strings.TrimSpace(doc.Markdown) == "" {
		return nil, errors.NewInvalidRequest("source file has no content")
	}

	name := input.Name
	if name == nil {
		stem := strings.TrimSuffix(filepath.Base(input.Path), filepath.Ext(input.Path))
		name = &stem
	}
	title := input.Title
	if title == nil && doc.Title != "" {
		title = &doc.Title
	}

	out, err := Store(ctx, database, cfg, StoreInput{
		Workspace: input.Workspace,
		Name:      name,
		Title:     title,
		Markdown:  doc.Markdown,
		Mode:      input.Mode,
		Overrides: input.Overrides,
	})
	if err != nil {
		return nil, err
	}

	return &ImportOutput{
		StoreOutput: *out,
		Path:        input.Path,
		MIME:        doc.MIME,
	}, nil
}

// readSource reads path without following a symlink in its final component.
// Files too large to hold cfg.DeckMaxChars characters are rejected before
// they are fully read.
func readSource(path string, cfg *config.Config) ([]byte, error) {
	file, err := openSourceFile(path)
	if err != nil {
		if _, ok := err.(*errors.DeckError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	var r io.Reader = file
	limit := int64(-1)
	if cfg.DeckMaxChars > 0 {
		limit = int64(cfg.DeckMaxChars) * maxBytesPerChar
		r = io.LimitReader(file, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if limit >= 0 && int64(len(data)) > limit {
		return nil, errors.NewSourceTooLarge(cfg.DeckMaxChars, len(data)/maxBytesPerChar)
	}
	return data, nil
}
