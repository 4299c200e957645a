package stores_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mechforge/mechforge/pkg/stores"
)

func openStore() (*stores.SQLiteStore, func()) {
	dir, err := os.MkdirTemp("", "forge-example")
	if err != nil {
		log.Fatal(err)
	}
	store, err := stores.NewSQLiteStore(stores.Config{Path: filepath.Join(dir, "forge.db")})
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}
	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}
	return store, func() {
		_ = store.Close()
		_ = os.RemoveAll(dir)
	}
}

// ExampleNewSQLiteStore demonstrates creating and initializing a new SQLite store.
func ExampleNewSQLiteStore() {
	store, cleanup := openStore()
	defer cleanup()

	if err := store.HealthCheck(context.Background()); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Store initialized successfully")
	// Output: Store initialized successfully
}

// ExampleSQLiteStore_AppendJournal demonstrates recording commands applied
// to a loadout.
func ExampleSQLiteStore_AppendJournal() {
	store, cleanup := openStore()
	defer cleanup()
	ctx := context.Background()

	for _, desc := range []string{"add Medium Laser to RA", "add AC/5 to RT"} {
		err := store.AppendJournal(ctx, &stores.JournalEntry{
			SessionID:   "session-1",
			LoadoutID:   "loadout-1",
			Chassis:     "std50",
			Action:      stores.JournalApplied,
			Kind:        "add",
			Description: desc,
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	id := "loadout-1"
	entries, err := store.ListJournal(ctx, &id, 10, 0)
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range entries {
		fmt.Printf("%d %s %s\n", e.ID, e.Action, e.Description)
	}
	// Output:
	// 1 applied add Medium Laser to RA
	// 2 applied add AC/5 to RT
}
