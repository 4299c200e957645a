package stores

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates a migrated SQLite store in a temporary directory
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: filepath.Join(t.TempDir(), "forge.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Error("expected an error without a path")
	}

	store, err := NewSQLiteStore(Config{
		Path: filepath.Join(t.TempDir(), "lifecycle.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.HealthCheck(ctx); err == nil {
		t.Error("expected health check to fail before Init")
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

// TestStoreMigrations tests database migrations
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, table := range []string{"catalog_entries", "journal"} {
		var count int
		if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}

	// running again is a no-op
	if err := store.Migrate(ctx); err != nil {
		t.Errorf("expected repeated migration to succeed, got %v", err)
	}
}

func TestCatalogEntryCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	entry := &CatalogEntry{
		Kind:   EntryKindItem,
		ID:     "ml",
		Name:   "Medium Laser",
		Data:   "id: ml\nkind: weapon\n",
		Source: "catalog.yaml",
	}
	if err := store.UpsertCatalogEntry(ctx, entry); err != nil {
		t.Fatalf("failed to upsert entry: %v", err)
	}
	if entry.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}

	got, err := store.GetCatalogEntry(ctx, EntryKindItem, "ml")
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got.Name != "Medium Laser" || got.Data != entry.Data || got.Kind != EntryKindItem {
		t.Errorf("unexpected entry: %+v", got)
	}

	entry.Name = "ER Medium Laser"
	entry.UpdatedAt = time.Time{}
	if err := store.UpsertCatalogEntry(ctx, entry); err != nil {
		t.Fatalf("failed to update entry: %v", err)
	}
	got, _ = store.GetCatalogEntry(ctx, EntryKindItem, "ml")
	if got.Name != "ER Medium Laser" {
		t.Errorf("expected updated name, got %s", got.Name)
	}

	_, err = store.GetCatalogEntry(ctx, EntryKindChassis, "ml")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another kind, got %v", err)
	}
}

func TestListCatalogEntries(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, e := range []*CatalogEntry{
		{Kind: EntryKindItem, ID: "ppc", Data: "{}"},
		{Kind: EntryKindItem, ID: "ml", Data: "{}"},
		{Kind: EntryKindChassis, ID: "std50", Data: "{}"},
	} {
		if err := store.UpsertCatalogEntry(ctx, e); err != nil {
			t.Fatalf("failed to upsert entry: %v", err)
		}
	}

	all, err := store.ListCatalogEntries(ctx, nil)
	if err != nil {
		t.Fatalf("failed to list entries: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 entries, got %d", len(all))
	}

	kind := EntryKindItem
	items, err := store.ListCatalogEntries(ctx, &kind)
	if err != nil {
		t.Fatalf("failed to list items: %v", err)
	}
	if len(items) != 2 || items[0].ID != "ml" || items[1].ID != "ppc" {
		t.Errorf("expected items ml, ppc in order, got %d entries", len(items))
	}
}

func TestReplaceCatalog(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.UpsertCatalogEntry(ctx, &CatalogEntry{Kind: EntryKindItem, ID: "old", Data: "{}"}); err != nil {
		t.Fatalf("failed to upsert entry: %v", err)
	}

	err := store.ReplaceCatalog(ctx, []*CatalogEntry{
		{Kind: EntryKindItem, ID: "ml", Data: "{}"},
		{Kind: EntryKindDefaults, ID: "defaults", Data: "{}"},
	})
	if err != nil {
		t.Fatalf("failed to replace catalog: %v", err)
	}

	all, _ := store.ListCatalogEntries(ctx, nil)
	if len(all) != 2 {
		t.Fatalf("expected 2 entries after replace, got %d", len(all))
	}
	if _, err := store.GetCatalogEntry(ctx, EntryKindItem, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the old entry to be gone, got %v", err)
	}

	// an invalid kind violates the CHECK constraint and rolls everything back
	err = store.ReplaceCatalog(ctx, []*CatalogEntry{
		{Kind: EntryKindItem, ID: "ppc", Data: "{}"},
		{Kind: EntryKind("weapon"), ID: "bad", Data: "{}"},
	})
	if err == nil {
		t.Fatal("expected an error for an invalid kind")
	}
	all, _ = store.ListCatalogEntries(ctx, nil)
	if len(all) != 2 {
		t.Errorf("expected the previous catalog to survive, got %d entries", len(all))
	}
}

func TestJournal(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rejected := "not_enough_slots"
	entries := []*JournalEntry{
		{SessionID: "s1", LoadoutID: "a", Chassis: "std50", Action: JournalApplied, Kind: "add", Description: "add Medium Laser to RA", Mass: 6},
		{SessionID: "s1", LoadoutID: "a", Chassis: "std50", Action: JournalRejected, Kind: "add", Description: "add AC/20 to HD", Result: &rejected, Mass: 6},
		{SessionID: "s1", LoadoutID: "b", Chassis: "omni55", Action: JournalApplied, Kind: "rename", Description: "rename to Brawler"},
		{SessionID: "s1", LoadoutID: "a", Chassis: "std50", Action: JournalUndone, Kind: "add", Description: "add Medium Laser to RA", Mass: 5},
	}
	for _, e := range entries {
		if err := store.AppendJournal(ctx, e); err != nil {
			t.Fatalf("failed to append journal entry: %v", err)
		}
		if e.ID == 0 {
			t.Error("expected journal entry ID to be set after insert")
		}
	}

	id := "a"
	got, err := store.ListJournal(ctx, &id, 10, 0)
	if err != nil {
		t.Fatalf("failed to list journal: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries for loadout a, got %d", len(got))
	}
	if got[0].Action != JournalApplied || got[2].Action != JournalUndone {
		t.Errorf("expected entries in write order, got %s ... %s", got[0].Action, got[2].Action)
	}
	if got[1].Result == nil || *got[1].Result != rejected {
		t.Errorf("expected rejected result %s, got %v", rejected, got[1].Result)
	}
	if got[0].Result != nil {
		t.Errorf("expected no result on an applied entry, got %v", *got[0].Result)
	}
	if got[2].Mass != 5 {
		t.Errorf("expected mass 5, got %v", got[2].Mass)
	}

	page, err := store.ListJournal(ctx, nil, 2, 2)
	if err != nil {
		t.Fatalf("failed to page journal: %v", err)
	}
	if len(page) != 2 || page[0].LoadoutID != "b" {
		t.Errorf("expected the second page to start with loadout b, got %d entries", len(page))
	}
}

func TestJournalRejectsUnknownAction(t *testing.T) {
	store := setupTestStore(t)
	err := store.AppendJournal(context.Background(), &JournalEntry{
		SessionID: "s1", LoadoutID: "a", Action: JournalAction("exploded"), Kind: "add",
	})
	if err == nil {
		t.Error("expected the CHECK constraint to reject the action")
	}
}
