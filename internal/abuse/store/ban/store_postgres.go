package ban

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aegis/internal/abuse/models"
)

// PostgresStore persists ban records in PostgreSQL.
// This store is pure I/O; expiry decisions and permission side effects
// belong in the service. One row per identity; re-imposition overwrites.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ban store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetActive(ctx context.Context, identityID string) (*models.BanRecord, error) {
	query := `
		SELECT id, identity_id, reason, description, duration_minutes, imposed_at, expires_at, is_active
		FROM ban_records
		WHERE identity_id = $1 AND is_active = TRUE
	`
	record, err := scanBan(s.db.QueryRowContext(ctx, query, identityID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active ban: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, record *models.BanRecord) error {
	if record == nil {
		return fmt.Errorf("ban record is required")
	}
	query := `
		INSERT INTO ban_records (id, identity_id, reason, description, duration_minutes, imposed_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (identity_id) DO UPDATE SET
			reason = EXCLUDED.reason,
			description = EXCLUDED.description,
			duration_minutes = EXCLUDED.duration_minutes,
			imposed_at = EXCLUDED.imposed_at,
			expires_at = EXCLUDED.expires_at,
			is_active = EXCLUDED.is_active
	`
	var duration sql.NullInt64
	if record.DurationMinutes != nil {
		duration = sql.NullInt64{Int64: int64(*record.DurationMinutes), Valid: true}
	}
	var expiresAt sql.NullTime
	if record.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *record.ExpiresAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.IdentityID,
		record.Reason,
		record.Description,
		duration,
		record.ImposedAt,
		expiresAt,
		record.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert ban: %w", err)
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, identityID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ban_records SET is_active = FALSE
		WHERE identity_id = $1 AND is_active = TRUE
	`, identityID)
	if err != nil {
		return false, fmt.Errorf("deactivate ban: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate ban rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*models.BanRecord, error) {
	query := `
		SELECT id, identity_id, reason, description, duration_minutes, imposed_at, expires_at, is_active
		FROM ban_records
		WHERE is_active = TRUE
		ORDER BY imposed_at DESC
	`
	return s.queryBans(ctx, query)
}

func (s *PostgresStore) ListExpired(ctx context.Context, now time.Time) ([]*models.BanRecord, error) {
	query := `
		SELECT id, identity_id, reason, description, duration_minutes, imposed_at, expires_at, is_active
		FROM ban_records
		WHERE is_active = TRUE AND expires_at IS NOT NULL AND expires_at <= $1
	`
	return s.queryBans(ctx, query, now)
}

func (s *PostgresStore) queryBans(ctx context.Context, query string, args ...any) ([]*models.BanRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bans: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var result []*models.BanRecord
	for rows.Next() {
		record, err := scanBan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bans: %w", err)
	}
	return result, nil
}

type banRow interface {
	Scan(dest ...any) error
}

func scanBan(row banRow) (*models.BanRecord, error) {
	var record models.BanRecord
	var duration sql.NullInt64
	var expiresAt sql.NullTime
	if err := row.Scan(
		&record.ID,
		&record.IdentityID,
		&record.Reason,
		&record.Description,
		&duration,
		&record.ImposedAt,
		&expiresAt,
		&record.Active,
	); err != nil {
		return nil, err
	}
	if duration.Valid {
		minutes := int(duration.Int64)
		record.DurationMinutes = &minutes
	}
	if expiresAt.Valid {
		record.ExpiresAt = &expiresAt.Time
	}
	return &record, nil
}
