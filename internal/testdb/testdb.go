// Package testdb provides throwaway SQLite databases for tests.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/marvel-explorer/internal/database"
	"github.com/JonMunkholm/marvel-explorer/internal/schema"
)

// New creates a file-backed SQLite database with every relation created.
// The database is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db := NewPlain(t)
	if _, err := schema.EnsureTables(context.Background(), db); err != nil {
		t.Fatalf("testdb.New: ensure tables: %v", err)
	}
	return db
}

// NewPlain creates an empty SQLite database.
func NewPlain(t *testing.T) database.Database {
	t.Helper()
	url := "sqlite:///" + filepath.Join(t.TempDir(), "explorer.db")
	db, err := database.NewDatabase(context.Background(), url, database.PoolConfig{})
	if err != nil {
		t.Fatalf("testdb.NewPlain: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// WithSchema creates an empty SQLite database and runs statements against it.
// Useful for tests that need a relation shaped differently from the models.
func WithSchema(t *testing.T, statements ...string) database.Database {
	t.Helper()
	db := NewPlain(t)
	for _, stmt := range statements {
		if err := db.Session(context.Background()).Exec(stmt).Error; err != nil {
			t.Fatalf("testdb.WithSchema: %v\nSQL: %s", err, stmt)
		}
	}
	return db
}

// Exec runs statements against db, failing the test on the first error.
func Exec(t *testing.T, db database.Database, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if err := db.Session(context.Background()).Exec(stmt).Error; err != nil {
			t.Fatalf("testdb.Exec: %v\nSQL: %s", err, stmt)
		}
	}
}
