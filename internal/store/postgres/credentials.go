package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledgersync/internal/store"
)

// GetCredential returns the newest-expiring credential for a user.
func (s *Store) GetCredential(ctx context.Context, userID string) (*store.Credential, error) {
	query := `
		SELECT user_id, token_data, tenant_id, created_at, expires_at
		FROM credentials
		WHERE user_id = $1
		ORDER BY expires_at DESC
		LIMIT 1
	`

	var cred store.Credential
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&cred.UserID,
		&cred.TokenData,
		&cred.TenantID,
		&cred.CreatedAt,
		&cred.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &cred, nil
}

// UpsertCredential replaces the user's credential in place. A refresh
// is an update, never an insert of a second row.
func (s *Store) UpsertCredential(ctx context.Context, cred *store.Credential) error {
	query := `
		INSERT INTO credentials (user_id, token_data, tenant_id, created_at, expires_at)
		VALUES ($1, $2, $3, NOW(), $4)
		ON CONFLICT (user_id) DO UPDATE
		SET token_data = EXCLUDED.token_data,
		    expires_at = EXCLUDED.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		cred.UserID,
		cred.TokenData,
		cred.TenantID,
		cred.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert credential for user %s: %w", cred.UserID, err)
	}
	return nil
}

// DeleteCredential removes the user's credential. Deleting an absent
// credential is a no-op.
func (s *Store) DeleteCredential(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential for user %s: %w", userID, err)
	}
	return nil
}

// SetCredentialTenant updates the tenant selection stored on the
// credential row, independent of token refresh.
func (s *Store) SetCredentialTenant(ctx context.Context, userID, tenantID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE credentials SET tenant_id = $1 WHERE user_id = $2", tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to set credential tenant for user %s: %w", userID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
