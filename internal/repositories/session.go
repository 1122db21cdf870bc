package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/personai/persona/internal/models"
)

// SessionRepository implements [models.SessionStore] backed by SQLite.
type SessionRepository struct {
	db *sql.DB
}

var _ models.SessionStore = (*SessionRepository)(nil)

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves the value stored under key. Absent keys return an empty string, not an error.
func (r *SessionRepository) Get(key string) (string, error) {
	query := `SELECT value FROM session_store WHERE key = ?`

	var value string
	err := r.db.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query session store: %w", err)
	}

	return value, nil
}

// Set inserts or replaces the value stored under key.
func (r *SessionRepository) Set(key, value string) error {
	query := `
		INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write session store: %w", err)
	}

	return nil
}

// Delete removes the key from the store. Deleting an absent key is a no-op.
func (r *SessionRepository) Delete(key string) error {
	query := `DELETE FROM session_store WHERE key = ?`

	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete from session store: %w", err)
	}

	return nil
}

// Clear removes every key from the store. Used on sign-out.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM session_store`); err != nil {
		return fmt.Errorf("failed to clear session store: %w", err)
	}

	return nil
}
