package deck

import (
	"regexp"
	"strings"
)

// Deck is a stored, converted slide deck.
type Deck struct {
	// ID is a ULID that uniquely identifies this deck
	ID string `json:"id"`

	// WorkspaceRaw is the original workspace string as provided by the user
	WorkspaceRaw string `json:"workspace"`

	// WorkspaceNorm is the normalized workspace (lowercased, trimmed, collapsed spaces)
	WorkspaceNorm string `json:"workspace_norm"`

	// NameRaw is the original name as provided by the user (nullable)
	NameRaw *string `json:"name,omitempty"`

	// NameNorm is the normalized name (nullable)
	NameNorm *string `json:"name_norm,omitempty"`

	// Title defaults to the deck's first title slide, then its name
	Title *string `json:"title,omitempty"`

	// SourceText is the markdown the deck was converted from
	SourceText string `json:"source_text,omitempty"`

	// HTML is the assembled slide markup
	HTML string `json:"html,omitempty"`

	SlideCount int `json:"slide_count"`

	// SourceChars is the character count of SourceText (runes, not bytes)
	SourceChars int `json:"source_chars"`

	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// Summary is a deck's metadata without source or markup.
// Used by list operations to reduce data transfer.
type Summary struct {
	ID            string  `json:"id"`
	Workspace     string  `json:"workspace"`
	WorkspaceNorm string  `json:"workspace_norm"`
	Name          *string `json:"name,omitempty"`
	NameNorm      *string `json:"name_norm,omitempty"`
	Title         *string `json:"title,omitempty"`
	SlideCount    int     `json:"slide_count"`
	SourceChars   int     `json:"source_chars"`
	CreatedAt     int64   `json:"created_at"`
	UpdatedAt     int64   `json:"updated_at"`
	DeletedAt     *int64  `json:"deleted_at,omitempty"`
}

// ToSummary strips the source and markup from d.
func (d *Deck) ToSummary() Summary {
	return Summary{
		ID:            d.ID,
		Workspace:     d.WorkspaceRaw,
		WorkspaceNorm: d.WorkspaceNorm,
		Name:          d.NameRaw,
		NameNorm:      d.NameNorm,
		Title:         d.Title,
		SlideCount:    d.SlideCount,
		SourceChars:   d.SourceChars,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		DeletedAt:     d.DeletedAt,
	}
}

// DisplayName returns the deck's name, or its ID for unnamed decks.
func (d *Deck) DisplayName() string {
	if d.NameRaw != nil {
		return *d.NameRaw
	}
	return d.ID
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses internal whitespace. Workspace and
// name lookups compare normalized values.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRegex.ReplaceAllString(s, " ")
}
