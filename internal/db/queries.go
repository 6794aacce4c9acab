package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.DeckError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const deckColumns = `
	id, workspace_raw, workspace_norm, name_raw, name_norm,
	title, source_text, html, slide_count, source_chars,
	created_at, updated_at, deleted_at`

const summaryColumns = `
	id, workspace_raw, workspace_norm, name_raw, name_norm,
	title, slide_count, source_chars, created_at, updated_at, deleted_at`

// Insert stores a new deck in the database.
func Insert(ctx context.Context, db *sql.DB, d *deck.Deck) error {
	query := `
		INSERT INTO decks (` + deckColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err := db.ExecContext(ctx, query,
		d.ID, d.WorkspaceRaw, d.WorkspaceNorm, toNullString(d.NameRaw), toNullString(d.NameNorm),
		toNullString(d.Title), d.SourceText, d.HTML, d.SlideCount, d.SourceChars,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return nil
}

// UpsertResult reports which row an Upsert wrote.
type UpsertResult struct {
	ID      string
	Created bool
}

// Upsert inserts d, or replaces the content of the active deck with the same
// workspace and name. The existing deck keeps its ID and created_at.
// Unnamed decks are always inserted.
func Upsert(ctx context.Context, db *sql.DB, d *deck.Deck) (*UpsertResult, error) {
	if d.NameNorm == nil {
		if err := Insert(ctx, db, d); err != nil {
			return nil, err
		}
		return &UpsertResult{ID: d.ID, Created: true}, nil
	}

	query := `
		INSERT INTO decks (` + deckColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(workspace_norm, name_norm) WHERE name_norm IS NOT NULL AND deleted_at IS NULL
		DO UPDATE SET
			workspace_raw = excluded.workspace_raw,
			name_raw = excluded.name_raw,
			title = excluded.title,
			source_text = excluded.source_text,
			html = excluded.html,
			slide_count = excluded.slide_count,
			source_chars = excluded.source_chars,
			updated_at = excluded.updated_at
		RETURNING id
	`

	var id string
	err := db.QueryRowContext(ctx, query,
		d.ID, d.WorkspaceRaw, d.WorkspaceNorm, toNullString(d.NameRaw), toNullString(d.NameNorm),
		toNullString(d.Title), d.SourceText, d.HTML, d.SlideCount, d.SourceChars,
		d.CreatedAt, d.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &UpsertResult{ID: id, Created: id == d.ID}, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a deck by its ULID.
// If includeDeleted is false, soft-deleted decks are excluded.
func GetByID(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*deck.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	d, err := scanDeck(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return d, nil
}

// GetByName retrieves a deck by normalized workspace and name.
// If includeDeleted is false, soft-deleted decks are excluded.
func GetByName(ctx context.Context, db *sql.DB, workspaceNorm, nameNorm string, includeDeleted bool) (*deck.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE workspace_norm = ? AND name_norm = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	} else {
		// If both active and soft-deleted decks exist for the same name, prefer the active one.
		// If no active deck exists, return the most recently updated deleted deck.
		query += " ORDER BY (deleted_at IS NULL) DESC, updated_at DESC LIMIT 1"
	}

	d, err := scanDeck(db.QueryRowContext(ctx, query, workspaceNorm, nameNorm))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return d, nil
}

// ListByWorkspace returns deck summaries for a workspace, most recently
// updated first, along with the total matching count.
func ListByWorkspace(ctx context.Context, db *sql.DB, workspaceNorm string, limit, offset int, includeDeleted bool) ([]deck.Summary, int, error) {
	where := "workspace_norm = ?"
	if !includeDeleted {
		where += " AND deleted_at IS NULL"
	}
	return listSummaries(ctx, db, where, []any{workspaceNorm}, limit, offset)
}

// ListAll returns deck summaries across workspaces. An empty workspaceNorm
// matches every workspace.
func ListAll(ctx context.Context, db *sql.DB, workspaceNorm string, limit, offset int, includeDeleted bool) ([]deck.Summary, int, error) {
	var (
		clauses []string
		args    []any
	)
	if workspaceNorm != "" {
		clauses = append(clauses, "workspace_norm = ?")
		args = append(args, workspaceNorm)
	}
	if !includeDeleted {
		clauses = append(clauses, "deleted_at IS NULL")
	}
	where := "1 = 1"
	if len(clauses) > 0 {
		where = strings.Join(clauses, " AND ")
	}
	return listSummaries(ctx, db, where, args, limit, offset)
}

func listSummaries(ctx context.Context, db *sql.DB, where string, args []any, limit, offset int) ([]deck.Summary, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	// id breaks ties so pagination is stable when updated_at collides
	query := `SELECT ` + summaryColumns + ` FROM decks WHERE ` + where +
		` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []deck.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		summaries = append(summaries, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// SoftDelete marks a deck as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, db *sql.DB, id string) error {
	now := time.Now().Unix()

	query := `
		UPDATE decks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.ExecContext(ctx, query, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// PurgeDeleted permanently removes soft-deleted decks. workspaceNorm, when
// non-nil, limits the purge to one workspace; olderThanDays, when non-nil,
// limits it to decks deleted more than that many days ago.
func PurgeDeleted(ctx context.Context, db *sql.DB, workspaceNorm *string, olderThanDays *int) (int, error) {
	query := "DELETE FROM decks WHERE deleted_at IS NOT NULL"
	var args []any

	if workspaceNorm != nil {
		query += " AND workspace_norm = ?"
		args = append(args, *workspaceNorm)
	}
	if olderThanDays != nil {
		cutoff := time.Now().Add(-time.Duration(*olderThanDays) * 24 * time.Hour).Unix()
		query += " AND deleted_at < ?"
		args = append(args, cutoff)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDeck scans a single row into a Deck.
func scanDeck(row rowScanner) (*deck.Deck, error) {
	var (
		d         deck.Deck
		nameRaw   sql.NullString
		nameNorm  sql.NullString
		title     sql.NullString
		deletedAt sql.NullInt64
	)

	err := row.Scan(
		&d.ID, &d.WorkspaceRaw, &d.WorkspaceNorm, &nameRaw, &nameNorm,
		&title, &d.SourceText, &d.HTML, &d.SlideCount, &d.SourceChars,
		&d.CreatedAt, &d.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	d.NameRaw = fromNullString(nameRaw)
	d.NameNorm = fromNullString(nameNorm)
	d.Title = fromNullString(title)
	if deletedAt.Valid {
		d.DeletedAt = &deletedAt.Int64
	}

	return &d, nil
}

// scanSummary scans a single row into a Summary.
func scanSummary(row rowScanner) (*deck.Summary, error) {
	var (
		s         deck.Summary
		nameRaw   sql.NullString
		nameNorm  sql.NullString
		title     sql.NullString
		deletedAt sql.NullInt64
	)

	err := row.Scan(
		&s.ID, &s.Workspace, &s.WorkspaceNorm, &nameRaw, &nameNorm,
		&title, &s.SlideCount, &s.SourceChars, &s.CreatedAt, &s.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Name = fromNullString(nameRaw)
	s.NameNorm = fromNullString(nameNorm)
	s.Title = fromNullString(title)
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Int64
	}

	return &s, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
