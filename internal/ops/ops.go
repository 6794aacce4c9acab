package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/db"
	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/errors"
	"github.com/hpungsan/deckhand/internal/segment"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Address represents a validated deck address.
type Address struct {
	ByID      bool
	ID        string
	Workspace string // normalized, defaulted to "default" for name-mode
	Name      string // normalized
}

// ValidateAddress validates addressing parameters and returns a normalized Address.
// Rules:
// - Must specify exactly one addressing mode: id OR (workspace + name)
// - If id provided with name or workspace → ErrAmbiguousAddressing
// - If neither id nor name provided → ErrInvalidRequest
func ValidateAddress(id, workspace, name string) (*Address, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	workspace = strings.TrimSpace(workspace)

	hasID := id != ""
	hasName := name != ""
	hasWorkspace := workspace != ""

	// Strict: id must be alone, no other addressing fields
	if hasID && (hasName || hasWorkspace) {
		return nil, errors.NewAmbiguousAddressing()
	}

	if !hasID && !hasName {
		return nil, errors.NewInvalidRequest("must specify either id or name")
	}

	if hasID {
		return &Address{
			ByID: true,
			ID:   id,
		}, nil
	}

	workspaceNorm := deck.Normalize(workspace)
	if workspaceNorm == "" {
		workspaceNorm = "default"
	}
	nameNorm := deck.Normalize(name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("name must not be empty")
	}

	return &Address{
		ByID:      false,
		Workspace: workspaceNorm,
		Name:      nameNorm,
	}, nil
}

// FetchKey is the address a caller passes back to fetch a stored deck.
// Either (Workspace + Name) or ID is populated.
type FetchKey struct {
	Workspace string `json:"workspace,omitempty"`
	Name      string `json:"name,omitempty"`
	ID        string `json:"id,omitempty"`
}

// BuildFetchKey creates a FetchKey for the given deck identifiers.
// If name present: {workspace, name}
// If unnamed: {id}
func BuildFetchKey(workspace, name, id string) FetchKey {
	if name != "" {
		return FetchKey{
			Workspace: workspace,
			Name:      name,
		}
	}
	return FetchKey{ID: id}
}

// resolveDeck loads the deck addr points at.
func resolveDeck(ctx context.Context, database *sql.DB, addr *Address, includeDeleted bool) (*deck.Deck, error) {
	if addr.ByID {
		return db.GetByID(ctx, database, addr.ID, includeDeleted)
	}
	return db.GetByName(ctx, database, addr.Workspace, addr.Name, includeDeleted)
}

// fetchKeyFor builds the FetchKey of a stored deck.
func fetchKeyFor(d *deck.Deck) FetchKey {
	name := ""
	if d.NameRaw != nil {
		name = *d.NameRaw
	}
	return BuildFetchKey(d.WorkspaceRaw, name, d.ID)
}

// Overrides replaces individual conversion settings from the config.
// Nil fields keep the configured value; a set budget is validated as given,
// so an explicit 0 is rejected.
type Overrides struct {
	MaxChars         *int
	MaxWords         *int
	MaxLines         *int
	TableCharBudget  *int
	PreserveNewlines *bool
	Sanitize         *bool
}

// newConverter builds a converter from cfg with per-call overrides applied.
// Segmentation diagnostics go to slog.Default at debug level.
func newConverter(cfg *config.Config, overrides Overrides) (*deck.Converter, error) {
	opts := cfg.DeckOptions()
	opts.Budget = overrides.Apply(opts.Budget)
	if overrides.PreserveNewlines != nil {
		opts.PreserveNewlines = *overrides.PreserveNewlines
	}
	if overrides.Sanitize != nil {
		opts.Sanitize = *overrides.Sanitize
	}

	return deck.New(opts, deck.WithLogger(slog.Default()))
}

// Apply returns b with the set budget overrides in place.
func (o Overrides) Apply(b segment.Budget) segment.Budget {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&b.MaxChars, o.MaxChars)
	set(&b.MaxWords, o.MaxWords)
	set(&b.MaxFragments, o.MaxLines)
	set(&b.TableCharBudget, o.TableCharBudget)
	return b
}

// checkSize rejects sources longer than cfg.DeckMaxChars runes.
func checkSize(cfg *config.Config, src string) error {
	if cfg.DeckMaxChars <= 0 {
		return nil
	}
	if n := segment.CountChars(src); n > cfg.DeckMaxChars {
		return errors.NewSourceTooLarge(cfg.DeckMaxChars, n)
	}
	return nil
}
