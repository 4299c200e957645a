package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// Set defaults
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 8
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 2
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	return &SQLiteStore{cfg: cfg}, nil
}

// Init opens the database with WAL journaling and foreign keys enabled.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate", s.cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs the embedded migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// CommitTx commits a transaction
func (s *SQLiteStore) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// RollbackTx rolls back a transaction
func (s *SQLiteStore) RollbackTx(tx *sql.Tx) error {
	return tx.Rollback()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertCatalogEntry = `
	INSERT INTO catalog_entries (kind, id, name, data, source, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (kind, id) DO UPDATE SET
		name = excluded.name,
		data = excluded.data,
		source = excluded.source,
		updated_at = excluded.updated_at
`

func upsertEntry(ctx context.Context, ex execer, entry *CatalogEntry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx, upsertCatalogEntry,
		entry.Kind,
		entry.ID,
		entry.Name,
		entry.Data,
		entry.Source,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog entry %s/%s: %w", entry.Kind, entry.ID, err)
	}
	return nil
}

// UpsertCatalogEntry inserts or replaces a catalog definition.
func (s *SQLiteStore) UpsertCatalogEntry(ctx context.Context, entry *CatalogEntry) error {
	return upsertEntry(ctx, s.db, entry)
}

// GetCatalogEntry retrieves a catalog definition by kind and id.
func (s *SQLiteStore) GetCatalogEntry(ctx context.Context, kind EntryKind, id string) (*CatalogEntry, error) {
	query := `
		SELECT kind, id, name, data, source, updated_at
		FROM catalog_entries
		WHERE kind = ? AND id = ?
	`

	entry := &CatalogEntry{}
	err := s.db.QueryRowContext(ctx, query, kind, id).Scan(
		&entry.Kind,
		&entry.ID,
		&entry.Name,
		&entry.Data,
		&entry.Source,
		&entry.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog entry %s/%s: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}

	return entry, nil
}

// ListCatalogEntries lists catalog definitions ordered by kind and id. A
// nil kind lists every kind.
func (s *SQLiteStore) ListCatalogEntries(ctx context.Context, kind *EntryKind) ([]*CatalogEntry, error) {
	query := `
		SELECT kind, id, name, data, source, updated_at
		FROM catalog_entries
		WHERE (? IS NULL OR kind = ?)
		ORDER BY kind, id
	`

	rows, err := s.db.QueryContext(ctx, query, kind, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer rows.Close()

	entries := []*CatalogEntry{}
	for rows.Next() {
		entry := &CatalogEntry{}
		err := rows.Scan(
			&entry.Kind,
			&entry.ID,
			&entry.Name,
			&entry.Data,
			&entry.Source,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog entries: %w", err)
	}

	return entries, nil
}

// ReplaceCatalog swaps the whole catalog mirror for entries in one
// transaction.
func (s *SQLiteStore) ReplaceCatalog(ctx context.Context, entries []*CatalogEntry) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_entries`); err != nil {
		_ = s.RollbackTx(tx)
		return fmt.Errorf("failed to clear catalog entries: %w", err)
	}
	for _, entry := range entries {
		if err := upsertEntry(ctx, tx, entry); err != nil {
			_ = s.RollbackTx(tx)
			return err
		}
	}

	if err := s.CommitTx(tx); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// AppendJournal appends a command record to the journal.
func (s *SQLiteStore) AppendJournal(ctx context.Context, entry *JournalEntry) error {
	query := `
		INSERT INTO journal (session_id, loadout_id, chassis, action, kind, description, result, mass, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx, query,
		entry.SessionID,
		entry.LoadoutID,
		entry.Chassis,
		entry.Action,
		entry.Kind,
		entry.Description,
		entry.Result,
		entry.Mass,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get journal entry ID: %w", err)
	}

	entry.ID = id
	return nil
}

// ListJournal lists journal entries in the order they were written. A nil
// loadoutID lists every loadout.
func (s *SQLiteStore) ListJournal(ctx context.Context, loadoutID *string, limit, offset int) ([]*JournalEntry, error) {
	query := `
		SELECT id, session_id, loadout_id, chassis, action, kind, description, result, mass, timestamp
		FROM journal
		WHERE (? IS NULL OR loadout_id = ?)
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, loadoutID, loadoutID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	entries := []*JournalEntry{}
	for rows.Next() {
		entry := &JournalEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.LoadoutID,
			&entry.Chassis,
			&entry.Action,
			&entry.Kind,
			&entry.Description,
			&entry.Result,
			&entry.Mass,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal: %w", err)
	}

	return entries, nil
}

// HealthCheck verifies the database connection is healthy
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}
