package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ledgersync/internal/store"
)

// GetUserByID returns a user by its ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, email, brain_id, is_active, created_at
		FROM users
		WHERE id = $1
	`

	var u store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.BrainID,
		&u.IsActive,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}
