package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Kerhoff/eventboard/internal/models"
	"github.com/Kerhoff/eventboard/internal/repository"
)

type sessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a session slot store backed by the session_slots table
func NewSessionStore(db *sql.DB) repository.SessionStore {
	return &sessionStore{db: db}
}

func (r *sessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM session_slots WHERE key = $1`

	var value []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session slot %q: %w", key, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load session slot: %w", err)
	}

	return value, nil
}

func (r *sessionStore) Save(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO session_slots (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to save session slot: %w", err)
	}

	return nil
}

func (r *sessionStore) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM session_slots WHERE key = $1`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to remove session slot: %w", err)
	}

	return nil
}
