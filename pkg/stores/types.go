package stores

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")

// EntryKind is the kind of a mirrored catalog definition.
type EntryKind string

const (
	EntryKindItem     EntryKind = "item"
	EntryKindChassis  EntryKind = "chassis"
	EntryKindUpgrade  EntryKind = "upgrade"
	EntryKindDefaults EntryKind = "defaults"
)

// JournalAction is what happened to a command.
type JournalAction string

const (
	JournalApplied  JournalAction = "applied"
	JournalUndone   JournalAction = "undone"
	JournalRedone   JournalAction = "redone"
	JournalRejected JournalAction = "rejected"
)

// CatalogEntry is one reference definition mirrored from a catalog file.
type CatalogEntry struct {
	Kind      EntryKind `json:"kind"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Data      string    `json:"data"` // YAML document of the definition
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JournalEntry records one command pushed, undone or redone on a loadout.
type JournalEntry struct {
	ID          int64         `json:"id"`
	SessionID   string        `json:"session_id"`
	LoadoutID   string        `json:"loadout_id"`
	Chassis     string        `json:"chassis"`
	Action      JournalAction `json:"action"`
	Kind        string        `json:"kind"`
	Description string        `json:"description"`
	Result      *string       `json:"result,omitempty"` // equip result type of a rejected command
	Mass        float64       `json:"mass"`             // loadout mass after the action
	Timestamp   time.Time     `json:"timestamp"`
}

// Store defines the interface for the persistence layer
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Transaction support
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error

	// Catalog operations
	UpsertCatalogEntry(ctx context.Context, entry *CatalogEntry) error
	GetCatalogEntry(ctx context.Context, kind EntryKind, id string) (*CatalogEntry, error)
	ListCatalogEntries(ctx context.Context, kind *EntryKind) ([]*CatalogEntry, error)
	ReplaceCatalog(ctx context.Context, entries []*CatalogEntry) error

	// Journal operations
	AppendJournal(ctx context.Context, entry *JournalEntry) error
	ListJournal(ctx context.Context, loadoutID *string, limit, offset int) ([]*JournalEntry, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
