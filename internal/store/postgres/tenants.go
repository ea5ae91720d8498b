package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledgersync/internal/store"
)

// GetTenantMetadata returns the metadata row for a (tenant, user) pair.
func (s *Store) GetTenantMetadata(ctx context.Context, tenantID, userID string) (*store.TenantMetadata, error) {
	query := `
		SELECT id, user_id, tenant_id, tenant_name, tenant_short_code, is_active, created_at, updated_at
		FROM tenant_metadata
		WHERE tenant_id = $1 AND user_id = $2
	`

	var t store.TenantMetadata
	err := s.db.QueryRowContext(ctx, query, tenantID, userID).Scan(
		&t.ID,
		&t.UserID,
		&t.TenantID,
		&t.TenantName,
		&t.ShortCode,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// ListTenantMetadata returns every connected tenant across all users.
func (s *Store) ListTenantMetadata(ctx context.Context) ([]store.TenantMetadata, error) {
	query := `
		SELECT id, user_id, tenant_id, tenant_name, tenant_short_code, is_active, created_at, updated_at
		FROM tenant_metadata
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant metadata: %w", err)
	}
	defer rows.Close()

	var tenants []store.TenantMetadata
	for rows.Next() {
		var t store.TenantMetadata
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.TenantID,
			&t.TenantName,
			&t.ShortCode,
			&t.IsActive,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tenant metadata row: %w", err)
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}
