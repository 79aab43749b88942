package stats

import (
	"context"
	"database/sql"
	"fmt"

	"aegis/internal/abuse/models"
)

// PostgresStore persists attack counters in PostgreSQL.
// This store is pure I/O—threshold decisions belong in the detector.
// Increments are single atomic upserts so concurrent requests from the
// same identity (e.g. double-submission) never lose updates.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed stats store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Increment(ctx context.Context, identityID string, kind models.ActionKind) (*models.AttackStats, error) {
	sessionDelta, conversationDelta := 0, 0
	switch kind {
	case models.ActionSession:
		sessionDelta = 1
	case models.ActionConversation:
		conversationDelta = 1
	}

	query := `
		INSERT INTO attack_stats (identity_id, session_events, conversation_events, window_minutes, flagged, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		ON CONFLICT (identity_id) DO UPDATE SET
			session_events = attack_stats.session_events + EXCLUDED.session_events,
			conversation_events = attack_stats.conversation_events + EXCLUDED.conversation_events,
			updated_at = NOW()
		RETURNING identity_id, session_events, conversation_events, window_minutes, flagged, updated_at
	`
	record, err := scanStats(s.db.QueryRowContext(ctx, query, identityID, sessionDelta, conversationDelta, models.DefaultWindowMinutes))
	if err != nil {
		return nil, fmt.Errorf("increment attack stats: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Get(ctx context.Context, identityID string) (*models.AttackStats, error) {
	query := `
		SELECT identity_id, session_events, conversation_events, window_minutes, flagged, updated_at
		FROM attack_stats
		WHERE identity_id = $1
	`
	record, err := scanStats(s.db.QueryRowContext(ctx, query, identityID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get attack stats: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Flag(ctx context.Context, identityID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE attack_stats SET flagged = TRUE WHERE identity_id = $1`, identityID)
	if err != nil {
		return fmt.Errorf("flag attack stats: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetWindow(ctx context.Context, identityID string, minutes int) error {
	query := `
		INSERT INTO attack_stats (identity_id, session_events, conversation_events, window_minutes, flagged, updated_at)
		VALUES ($1, 0, 0, $2, FALSE, NOW())
		ON CONFLICT (identity_id) DO UPDATE SET
			window_minutes = EXCLUDED.window_minutes
	`
	if _, err := s.db.ExecContext(ctx, query, identityID, minutes); err != nil {
		return fmt.Errorf("set attack stats window: %w", err)
	}
	return nil
}

func (s *PostgresStore) ResetAll(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE attack_stats
		SET session_events = 0, conversation_events = 0, flagged = FALSE
	`)
	if err != nil {
		return 0, fmt.Errorf("reset attack stats: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset attack stats rows affected: %w", err)
	}
	return int(rows), nil
}

type statsRow interface {
	Scan(dest ...any) error
}

func scanStats(row statsRow) (*models.AttackStats, error) {
	var record models.AttackStats
	if err := row.Scan(
		&record.IdentityID,
		&record.SessionEvents,
		&record.ConversationEvents,
		&record.WindowMinutes,
		&record.Flagged,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
