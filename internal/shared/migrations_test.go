package shared

import (
	"database/sql"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Each sqlite in-memory connection is its own database; keep one.
	ConfigureDatabase(db, 1, 1)
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return true
}

func TestRunMigrations(t *testing.T) {
	db := openTestDB(t)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("creates the transfers table", func(t *testing.T) {
		if !tableExists(t, db, "transfers") {
			t.Error("expected the transfers table")
		}
		if !tableExists(t, db, "transfers_sequence") {
			t.Error("expected the transfers_sequence table")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Errorf("expected a second run to be a no-op, got %v", err)
		}
	})

	t.Run("records applied versions", func(t *testing.T) {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to count migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected applied migrations to be recorded")
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	t.Run("undoes the latest migration", func(t *testing.T) {
		db := openTestDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tableExists(t, db, "transfers") {
			t.Error("expected the transfers table to be dropped")
		}
	})

	t.Run("errors with nothing applied", func(t *testing.T) {
		db := openTestDB(t)
		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected an error with no applied migrations")
		}
	})
}
