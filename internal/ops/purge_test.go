package ops

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/db"
	"github.com/hpungsan/deckhand/internal/errors"
)

// storeDeleted stores a deck in workspace and soft-deletes it.
func storeDeleted(t *testing.T, database *sql.DB, workspace string) string {
	t.Helper()
	ctx := context.Background()
	out, err := Store(ctx, database, config.DefaultConfig(), StoreInput{Workspace: workspace, Markdown: "bye"})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if _, err := Delete(ctx, database, DeleteInput{ID: out.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	return out.ID
}

func TestPurge_AllDeleted(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	storeDeleted(t, database, "a")
	storeDeleted(t, database, "b")

	output, err := Purge(ctx, database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if output.Purged != 2 {
		t.Errorf("Purged = %d, want 2", output.Purged)
	}
	if output.Message != "Permanently deleted 2 decks" {
		t.Errorf("Message = %q", output.Message)
	}
}

func TestPurge_WorkspaceFilter(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	storeDeleted(t, database, "Alpha")
	other := storeDeleted(t, database, "beta")

	output, err := Purge(ctx, database, PurgeInput{Workspace: stringPtr(" ALPHA ")})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if output.Purged != 1 {
		t.Errorf("Purged = %d, want 1", output.Purged)
	}

	if _, err := db.GetByID(ctx, database, other, true); err != nil {
		t.Errorf("other workspace deck should still exist: %v", err)
	}
}

func TestPurge_OlderThanDays(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	recent := storeDeleted(t, database, "default")
	old := storeDeleted(t, database, "default")

	fifteenDaysAgo := time.Now().Unix() - (15 * 24 * 60 * 60)
	if _, err := database.Exec("UPDATE decks SET deleted_at = ? WHERE id = ?", fifteenDaysAgo, old); err != nil {
		t.Fatalf("Failed to set old deleted_at: %v", err)
	}

	output, err := Purge(ctx, database, PurgeInput{OlderThanDays: intPtr(7)})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if output.Purged != 1 {
		t.Errorf("Purged = %d, want 1", output.Purged)
	}
	if output.Message != "Permanently deleted 1 deck (deleted more than 7 days ago)" {
		t.Errorf("Message = %q", output.Message)
	}

	if _, err := db.GetByID(ctx, database, recent, true); err != nil {
		t.Errorf("recently deleted deck should still exist: %v", err)
	}
}

func TestPurge_DoesNotAffectActive(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	active, err := Store(ctx, database, config.DefaultConfig(), StoreInput{Markdown: "stay"})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	output, err := Purge(ctx, database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if output.Purged != 0 || output.Message != "No deleted decks to purge" {
		t.Errorf("Purge = %+v, want nothing purged", output)
	}
	if _, err := db.GetByID(ctx, database, active.ID, false); err != nil {
		t.Errorf("active deck should still exist: %v", err)
	}
}

func TestPurge_NegativeOlderThanDays(t *testing.T) {
	_, err := Purge(context.Background(), openTestDB(t), PurgeInput{OlderThanDays: intPtr(-1)})
	if err == nil {
		t.Fatal("Expected error for negative older_than_days, got nil")
	}
	want := "INVALID_REQUEST: older_than_days cannot be negative"
	if err.Error() != want {
		t.Errorf("Error = %q, want %q", err.Error(), want)
	}
}

func TestFormatPurgeMessage(t *testing.T) {
	ws := "team"
	days := 3

	tests := []struct {
		count    int
		ws       *string
		days     *int
		expected string
	}{
		{0, nil, nil, "No deleted decks to purge"},
		{1, nil, nil, "Permanently deleted 1 deck"},
		{4, &ws, nil, `Permanently deleted 4 decks from workspace "team"`},
		{2, &ws, &days, `Permanently deleted 2 decks from workspace "team" (deleted more than 3 days ago)`},
	}

	for _, tc := range tests {
		if got := formatPurgeMessage(tc.count, tc.ws, tc.days); got != tc.expected {
			t.Errorf("formatPurgeMessage(%d) = %q, want %q", tc.count, got, tc.expected)
		}
	}
}

func TestPurge_BlankWorkspace(t *testing.T) {
	_, err := Purge(context.Background(), openTestDB(t), PurgeInput{Workspace: stringPtr("   ")})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Purge with blank workspace = %v, want INVALID_REQUEST", err)
	}
}
