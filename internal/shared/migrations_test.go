package shared

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	// A second pooled connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestMigrations(t *testing.T) {
	t.Run("LoadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(migrations) == 0 {
			t.Fatal("expected at least one embedded migration")
		}
		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("expected migration %d to have both up and down SQL", m.Version)
			}
		}
	})

	t.Run("RunMigrations Creates Session Store", func(t *testing.T) {
		db := newTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := db.Exec("INSERT INTO session_store (key, value) VALUES ('k', 'v')"); err != nil {
			t.Errorf("expected session_store table to exist, got %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("expected schema_migrations table, got %v", err)
		}
		if count == 0 {
			t.Error("expected applied migrations to be recorded")
		}
	})

	t.Run("RunMigrations Is Idempotent", func(t *testing.T) {
		db := newTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected no error on first run, got %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected no error on second run, got %v", err)
		}
	})

	t.Run("RollbackMigration", func(t *testing.T) {
		db := newTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := db.Exec("INSERT INTO session_store (key, value) VALUES ('k', 'v')"); err == nil {
			t.Error("expected session_store table to be dropped")
		}
	})

	t.Run("Rollback Without Migrations", func(t *testing.T) {
		db := newTestDB(t)

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected an error with nothing to roll back")
		}
	})

	t.Run("RemoveComments", func(t *testing.T) {
		in := "CREATE TABLE t ( -- trailing comment\n    id INTEGER -- another\n)"
		out := removeComments(in)

		if out != "CREATE TABLE t (\n    id INTEGER\n)" {
			t.Errorf("expected comments stripped, got %q", out)
		}
	})
}
