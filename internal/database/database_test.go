package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) Database {
	t.Helper()
	url := "sqlite:///" + filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(context.Background(), url, PoolConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgresql://u:p@h:5432/db", "postgres://u:p@h:5432/db"},
		{"POSTGRES://u:p@h/db", "postgres://u:p@h/db"},
		{"PostgreSQL://u:p@h/db", "postgres://u:p@h/db"},
		{"postgres://u:p@h/db", "postgres://u:p@h/db"},
		{"sqlite:///tmp/x.db", "sqlite:///tmp/x.db"},
		{"no-scheme", "no-scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(context.Background(), "mysql://localhost/db", PoolConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewDatabase_SQLite(t *testing.T) {
	db := openSQLite(t)
	assert.True(t, db.IsSQLite())
	assert.False(t, db.IsPostgres())
	assert.NoError(t, db.Ping(context.Background()))
}

func TestTransaction_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	require.NoError(t, db.Session(ctx).Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)").Error)

	txn, err := db.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.Session().Exec("INSERT INTO items (id, name) VALUES (1, 'kept')").Error)
	require.NoError(t, txn.Commit())
	assert.NoError(t, txn.Rollback(), "rollback after commit is a no-op")

	txn, err = db.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.Session().Exec("INSERT INTO items (id, name) VALUES (2, 'dropped')").Error)
	require.NoError(t, txn.Rollback())

	var count int64
	require.NoError(t, db.Session(ctx).Table("items").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	require.NoError(t, db.Session(ctx).Exec("CREATE TABLE items (id INTEGER PRIMARY KEY)").Error)

	boom := errors.New("boom")
	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO items (id) VALUES (1)").Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Session(ctx).Table("items").Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, WithTransaction(ctx, db, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO items (id) VALUES (1)").Error
	}))
	require.NoError(t, db.Session(ctx).Table("items").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	require.NoError(t, db.Session(ctx).Exec("CREATE TABLE items (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Session(ctx).Exec("INSERT INTO items (id) VALUES (1)").Error)

	sqliteErr := db.Session(ctx).Exec("INSERT INTO items (id) VALUES (1)").Error
	require.Error(t, sqliteErr)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlite duplicate", sqliteErr, true},
		{"postgres duplicate", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped postgres duplicate", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"gorm duplicate", gorm.ErrDuplicatedKey, true},
		{"plain", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestTruncateSQL(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateSQL(short))

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateSQL(string(long))
	assert.LessOrEqual(t, len(got), maxSQLLength)
	assert.Contains(t, got, "...")
}
