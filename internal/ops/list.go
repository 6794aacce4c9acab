package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/deckhand/internal/db"
	"github.com/hpungsan/deckhand/internal/deck"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Workspace      string // defaults to "default"; ignored when AllWorkspaces is set
	AllWorkspaces  bool
	Limit          int // default: 20, max: 100
	Offset         int // default: 0
	IncludeDeleted bool
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []deck.Summary `json:"items"`
	Pagination Pagination     `json:"pagination"`
	Sort       string         `json:"sort"`
}

// List returns one page of deck summaries, most recently updated first,
// either for one workspace or across all of them.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	var (
		items []deck.Summary
		total int
		err   error
	)
	switch {
	case input.AllWorkspaces:
		items, total, err = db.ListAll(ctx, database, "", limit, offset, input.IncludeDeleted)
	default:
		ws := deck.Normalize(input.Workspace)
		if ws == "" {
			ws = "default"
		}
		items, total, err = db.ListByWorkspace(ctx, database, ws, limit, offset, input.IncludeDeleted)
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []deck.Summary{}
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}

// clampPage applies the default limit and bounds both values.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return min(limit, MaxListLimit), max(offset, 0)
}
