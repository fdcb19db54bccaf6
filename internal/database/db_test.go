package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestNewCreatesDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.db")

	db, err := New(Config{Path: path, Profile: ProfileStandard, Name: "reference"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "reference", db.Name())
	assert.Equal(t, ProfileStandard, db.Profile())
	assert.NoError(t, db.QuickCheck(context.Background()), "Fresh database should pass a quick check")
}

func TestNewDefaultsToStandardProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(Config{Path: path, Name: "test"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ProfileStandard, db.Profile())
}

func TestMigrateAppliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.db")

	db, err := New(Config{Path: path, Profile: ProfileStandard, Name: "reference"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())

	// Schema should now accept inserts
	_, err = db.Conn().Exec(
		"INSERT INTO sector_map (ticker, sector, updated_at) VALUES (?, ?, ?)",
		"AAPL", "Technology", 0,
	)
	assert.NoError(t, err, "sector_map table should exist after migration")

	// Migration is idempotent
	assert.NoError(t, db.Migrate(), "Re-running migration should be a no-op")
}

func TestMigrateSkipsUnknownDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mystery.db")

	db, err := New(Config{Path: path, Name: "mystery"})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Migrate(), "Unknown database names should skip migration without error")
}

func TestHealthCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")

	db, err := New(Config{Path: path, Profile: ProfileLedger, Name: "snapshots"})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.HealthCheck(context.Background()), "Fresh database should pass integrity check")
}

func setupMemoryDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	_, err = db.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, value TEXT)")
	require.NoError(t, err)

	return db
}

func TestWithTransactionCommits(t *testing.T) {
	db := setupMemoryDB(t)
	defer db.Close()

	err := WithTransaction(db, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO items (value) VALUES ('a')")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 1, count, "Committed transaction should persist the row")
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := setupMemoryDB(t)
	defer db.Close()

	err := WithTransaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO items (value) VALUES ('a')"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 0, count, "Failed transaction should leave no rows behind")
}

func TestWithTransactionRecoversPanic(t *testing.T) {
	db := setupMemoryDB(t)
	defer db.Close()

	err := WithTransaction(db, func(tx *sql.Tx) error {
		panic("boom")
	})
	require.Error(t, err, "Panic inside the transaction should surface as an error")
	assert.Contains(t, err.Error(), "panic in transaction")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 0, count, "Panicked transaction should be rolled back")
}

func TestWithTransactionNilDB(t *testing.T) {
	err := WithTransaction(nil, func(tx *sql.Tx) error { return nil })
	assert.Error(t, err, "Nil database should be rejected")
}
