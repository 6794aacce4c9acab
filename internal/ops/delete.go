package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/deckhand/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID        string
	Workspace string
	Name      string
}

// DeleteOutput reports the deck that was soft-deleted. It stays reachable
// through FetchKey with include_deleted until purged.
type DeleteOutput struct {
	Deleted  bool     `json:"deleted"`
	ID       string   `json:"id"`
	FetchKey FetchKey `json:"fetch_key"`
	Title    *string  `json:"title,omitempty"`
	Slides   int      `json:"slides"`
}

// Delete soft-deletes a live deck. Decks that are already deleted are
// reported as not found.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Workspace, input.Name)
	if err != nil {
		return nil, err
	}

	d, err := resolveDeck(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}
	if err := db.SoftDelete(ctx, database, d.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted:  true,
		ID:       d.ID,
		FetchKey: fetchKeyFor(d),
		Title:    d.Title,
		Slides:   d.SlideCount,
	}, nil
}
