package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/deckhand/internal/deck"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	Workspace      string
	Name           string
	IncludeDeleted bool
	IncludeSource  *bool // nil means true
	IncludeHTML    *bool // nil means true
}

// FetchOutput is a stored deck plus the key to fetch it again.
type FetchOutput struct {
	deck.Deck
	FetchKey FetchKey `json:"fetch_key"`
}

// Fetch retrieves a deck by ID or by workspace and name. The markdown
// source and slide HTML can be left out for callers that only need metadata.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Workspace, input.Name)
	if err != nil {
		return nil, err
	}

	d, err := resolveDeck(ctx, database, addr, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{Deck: *d, FetchKey: fetchKeyFor(d)}
	if !include(input.IncludeSource) {
		output.SourceText = ""
	}
	if !include(input.IncludeHTML) {
		output.HTML = ""
	}
	return output, nil
}

func include(flag *bool) bool {
	return flag == nil || *flag
}
