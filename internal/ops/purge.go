package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/deckhand/internal/db"
	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Workspace     *string // optional filter by workspace
	OlderThanDays *int    // optional, only purge if deleted_at < (now - N days)
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently removes soft-deleted decks, optionally only those in one
// workspace or deleted more than OlderThanDays ago. Live decks are never
// touched.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	var workspaceNorm *string
	if input.Workspace != nil {
		norm := deck.Normalize(*input.Workspace)
		if norm == "" {
			return nil, errors.NewInvalidRequest("workspace must not be empty")
		}
		workspaceNorm = &norm
	}
	if days := input.OlderThanDays; days != nil && *days < 0 {
		return nil, errors.NewInvalidRequest("older_than_days cannot be negative")
	}

	n, err := db.PurgeDeleted(ctx, database, workspaceNorm, input.OlderThanDays)
	if err != nil {
		return nil, err
	}
	return &PurgeOutput{
		Purged:  n,
		Message: formatPurgeMessage(n, input.Workspace, input.OlderThanDays),
	}, nil
}

func formatPurgeMessage(count int, workspace *string, olderThanDays *int) string {
	if count == 0 {
		return "No deleted decks to purge"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Permanently deleted %d deck", count)
	if count != 1 {
		b.WriteByte('s')
	}
	if workspace != nil {
		fmt.Fprintf(&b, " from workspace %q", *workspace)
	}
	if olderThanDays != nil {
		fmt.Fprintf(&b, " (deleted more than %d days ago)", *olderThanDays)
	}
	return b.String()
}
