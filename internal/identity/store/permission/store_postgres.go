package permission

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists permission rows in PostgreSQL. Blocking NULLs the
// value in place rather than deleting the row, so the row's existence
// records that the identity was provisioned.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed permission store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Block(ctx context.Context, identityID string) error {
	query := `
		INSERT INTO access_permissions (identity_id, permission)
		VALUES ($1, NULL)
		ON CONFLICT (identity_id) DO UPDATE SET permission = NULL
	`
	if _, err := s.db.ExecContext(ctx, query, identityID); err != nil {
		return fmt.Errorf("block permission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Restore(ctx context.Context, identityID string) error {
	query := `
		INSERT INTO access_permissions (identity_id, permission)
		VALUES ($1, $2)
		ON CONFLICT (identity_id) DO UPDATE SET permission = EXCLUDED.permission
	`
	if _, err := s.db.ExecContext(ctx, query, identityID, Granted); err != nil {
		return fmt.Errorf("restore permission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, identityID string) (*int, error) {
	query := `SELECT permission FROM access_permissions WHERE identity_id = $1`

	var value sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, identityID).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	if !value.Valid {
		return nil, nil
	}
	permission := int(value.Int64)
	return &permission, nil
}
