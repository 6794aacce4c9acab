package segment

import (
	"github.com/hpungsan/deckhand/internal/errors"
)

// Default slide budgets.
const (
	DefaultMaxChars        = 1000
	DefaultMaxWords        = 250
	DefaultMaxFragments    = 7
	DefaultTableCharBudget = 1000
)

// Budget holds the soft capacity thresholds for one slide.
type Budget struct {
	// MaxChars bounds the cumulative rune count of a section.
	MaxChars int

	// MaxWords bounds the cumulative word count of a section.
	MaxWords int

	// MaxFragments bounds the fragment count of a section. It stands in for a
	// line budget (one fragment is one line slot, not one rendered line) and
	// is also the line budget used when chunking tables.
	MaxFragments int

	// TableCharBudget caps table rows per chunk at TableCharBudget divided by
	// the average row length, so verbose rows split into smaller chunks.
	TableCharBudget int
}

// DefaultBudget returns the default slide budget.
func DefaultBudget() Budget {
	return Budget{
		MaxChars:        DefaultMaxChars,
		MaxWords:        DefaultMaxWords,
		MaxFragments:    DefaultMaxFragments,
		TableCharBudget: DefaultTableCharBudget,
	}
}

// Validate rejects non-positive thresholds.
func (b Budget) Validate() error {
	checks := []struct {
		field string
		value int
	}{
		{"max_chars_per_slide", b.MaxChars},
		{"max_words_per_slide", b.MaxWords},
		{"max_lines_per_slide", b.MaxFragments},
		{"table_char_budget", b.TableCharBudget},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return errors.NewInvalidBudget(c.field, c.value)
		}
	}
	return nil
}

// ShouldCreateNewSection reports whether appending candidate to current would
// push the section over any threshold. Characters, words, and fragments are
// summed over the current section plus the candidate; exceeding any one of
// them is enough.
func (b Budget) ShouldCreateNewSection(candidate string, current Section) bool {
	chars := current.Chars() + CountChars(candidate)
	words := current.Words() + CountWords(candidate)
	fragments := current.Len() + 1

	return chars > b.MaxChars || words > b.MaxWords || fragments > b.MaxFragments
}
