package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ledgersync/internal/store"
)

// ListStatements returns every statement row for a tenant.
func (s *Store) ListStatements(ctx context.Context, tenantID string) ([]store.Statement, error) {
	query := `
		SELECT client_name, account_name, transaction_date, payee, particulars, received, file_name
		FROM statements
		WHERE tenant_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var statements []store.Statement
	for rows.Next() {
		var st store.Statement
		var received sql.NullFloat64
		if err := rows.Scan(
			&st.ClientName,
			&st.AccountName,
			&st.TransactionDate,
			&st.Payee,
			&st.Particulars,
			&received,
			&st.FileName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan statement row: %w", err)
		}
		if received.Valid {
			st.Received = received.Float64
		}
		statements = append(statements, st)
	}

	return statements, rows.Err()
}
