package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/db"
	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/segment"
)

// StoreMode controls collision behavior.
type StoreMode string

const (
	StoreModeError   StoreMode = "error"   // default: fail on name collision
	StoreModeReplace StoreMode = "replace" // overwrite existing
)

// StoreInput contains parameters for the Store operation.
type StoreInput struct {
	Workspace string    // default: "default"
	Name      *string   // optional
	Title     *string   // default: first title slide, then name
	Markdown  string    // required
	Mode      StoreMode // default: StoreModeError
	Overrides Overrides
}

// StoreOutput contains the result of the Store operation.
type StoreOutput struct {
	ID       string     `json:"id"`
	FetchKey FetchKey   `json:"fetch_key"`
	Created  bool       `json:"created"`
	Stats    deck.Stats `json:"stats"`
}

// Store converts markdown and creates or replaces a deck.
func Store(ctx context.Context, database *sql.DB, cfg *config.Config, input StoreInput) (*StoreOutput, error) {
	// Validate required fields
	if input.Markdown == "" {
		return nil, errors.NewInvalidRequest("markdown is required")
	}

	// Apply defaults
	if strings.TrimSpace(input.Workspace) == "" {
		input.Workspace = "default"
	}
	if input.Mode == "" {
		input.Mode = StoreModeError
	}
	if input.Mode != StoreModeError && input.Mode != StoreModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	// Normalize workspace
	workspaceNorm := deck.Normalize(input.Workspace)
	if workspaceNorm == "" {
		return nil, errors.NewInvalidRequest("workspace must not be empty")
	}

	// Normalize name if provided
	var nameRaw, nameNorm *string
	if input.Name != nil {
		normalized := deck.Normalize(*input.Name)
		if normalized == "" {
			return nil, errors.NewInvalidRequest("name must not be empty (omit it for unnamed decks)")
		}
		nameRaw = input.Name
		nameNorm = &normalized
	}

	if err := checkSize(cfg, input.Markdown); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("store")
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
		return nil, errors.NewCancelled("store")
	}

	// Default title to the first title slide, then to the name
	title := input.Title
	if title == nil {
		if t := firstTitle(res); t != "" {
			title = &t
		} else if nameRaw != nil {
			title = nameRaw
		}
	}

	// Generate ULID for new deck (may be discarded if upsert updates existing)
	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	d := &deck.Deck{
		ID:            id,
		WorkspaceRaw:  input.Workspace,
		WorkspaceNorm: workspaceNorm,
		NameRaw:       nameRaw,
		NameNorm:      nameNorm,
		Title:         title,
		SourceText:    input.Markdown,
		HTML:          res.HTML,
		SlideCount:    res.Stats.Slides,
		SourceChars:   segment.CountChars(input.Markdown),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Build name for fetch key
	name := ""
	if nameRaw != nil {
		name = *nameRaw
	}

	if input.Mode == StoreModeReplace {
		// Atomic UPSERT: concurrent callers replacing the same name update one row.
		result, err := db.Upsert(ctx, database, d)
		if err != nil {
			return nil, err
		}

		return &StoreOutput{
			ID:       result.ID,
			FetchKey: BuildFetchKey(input.Workspace, name, result.ID),
			Created:  result.Created,
			Stats:    res.Stats,
		}, nil
	}

	// mode:error - Insert and fail on conflict
	if err := db.Insert(ctx, database, d); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(input.Workspace, name)
		}
		return nil, err
	}

	return &StoreOutput{
		ID:       id,
		FetchKey: BuildFetchKey(input.Workspace, name, id),
		Created:  true,
		Stats:    res.Stats,
	}, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
