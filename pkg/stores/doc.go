// Package stores provides the persistence layer for mechforge.
// It includes SQLite-based storage with WAL mode and embedded migrations
// for the catalog mirror and the command journal.
package stores
