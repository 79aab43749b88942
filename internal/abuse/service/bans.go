package service

import (
	"context"

	"aegis/internal/abuse/models"
	"aegis/internal/abuse/tracer"
	dErrors "aegis/pkg/domain-errors"
)

// Ban imposes an administrative ban. A nil duration makes the ban
// permanent. If the identity already has a ban record, active or not, it
// is overwritten in place; last write wins.
func (s *Service) Ban(ctx context.Context, identityID string, reason models.BanReason, description string, durationMinutes *int) (record *models.BanRecord, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanBan,
		tracer.String(tracer.AttrIdentityID, identityID),
	)
	defer func() { span.End(err) }()

	if identityID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identity_id is required")
	}
	if s.directory != nil {
		exists, err := s.directory.Exists(ctx, identityID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
		}
		if !exists {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
	}

	record, err = models.NewBanRecord(identityID, reason, description, durationMinutes, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.impose(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to impose ban")
	}
	s.invalidateSessions(ctx, identityID)

	s.logAudit(ctx, "ban_imposed",
		"identity_id", identityID,
		"reason", reason,
		"duration_minutes", durationMinutes,
		"expires_at", record.ExpiresAt,
	)
	if s.metrics != nil {
		s.metrics.IncrementBansImposed(string(reason))
	}
	return record, nil
}

// Unban lifts an identity's active ban and restores its permission.
// Reports not-found when the identity is not currently banned.
func (s *Service) Unban(ctx context.Context, identityID string) error {
	if identityID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "identity_id is required")
	}

	record, err := s.bans.GetActive(ctx, identityID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ban record")
	}
	if record == nil {
		return dErrors.New(dErrors.CodeNotFound, "identity is not currently banned")
	}

	if err := s.lift(ctx, identityID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lift ban")
	}

	s.logAudit(ctx, "ban_lifted", "identity_id", identityID, "cause", "manual")
	if s.metrics != nil {
		s.metrics.IncrementBansLifted("manual")
	}
	return nil
}

// IsBanned reports whether the identity is currently banned, with a
// human-readable status. If the active record's expiry has already
// passed, the lookup itself deactivates it (lazy expiry); the sweeper
// performs the same deactivation proactively, and whichever fires first
// wins.
func (s *Service) IsBanned(ctx context.Context, identityID string) (bool, string, error) {
	record, err := s.bans.GetActive(ctx, identityID)
	if err != nil {
		return false, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ban record")
	}
	if record == nil {
		return false, "", nil
	}

	if record.IsExpired(s.now()) {
		if err := s.lift(ctx, identityID); err != nil {
			s.logger.WarnContext(ctx, "failed to deactivate expired ban on lookup",
				"error", err, "identity_id", identityID)
		} else {
			s.logAudit(ctx, "ban_lifted", "identity_id", identityID, "cause", "expired")
			if s.metrics != nil {
				s.metrics.IncrementBansLifted("expired")
			}
		}
		return false, "", nil
	}

	return true, record.StatusText(), nil
}

// ListBans returns all active bans, most recently imposed first.
func (s *Service) ListBans(ctx context.Context) ([]*models.BanRecord, error) {
	records, err := s.bans.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list bans")
	}
	return records, nil
}

// lift deactivates the identity's ban and restores its permission.
// Both halves are idempotent, so racing the sweeper is harmless.
func (s *Service) lift(ctx context.Context, identityID string) error {
	if _, err := s.bans.Deactivate(ctx, identityID); err != nil {
		return err
	}
	return s.permissions.Restore(ctx, identityID)
}
