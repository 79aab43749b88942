package service

import (
	"context"

	"aegis/internal/abuse/models"
	"aegis/internal/abuse/tracer"
	dErrors "aegis/pkg/domain-errors"
)

// Summary returns the identity's counters, flagged state, and active ban
// detail for administrative display.
func (s *Service) Summary(ctx context.Context, identityID string) (*models.AbuseSummary, error) {
	if identityID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identity_id is required")
	}

	stats, err := s.stats.Get(ctx, identityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attack stats")
	}
	ban, err := s.bans.GetActive(ctx, identityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ban record")
	}
	if stats == nil && ban == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity has no tracked activity")
	}
	if stats == nil {
		// Banned manually before any tracked event; present zero counts.
		stats, err = models.NewAttackStats(identityID)
		if err != nil {
			return nil, err
		}
	}
	return &models.AbuseSummary{Stats: stats, Ban: ban}, nil
}

// ResetAllStats zeroes every identity's counters and clears flags. Both
// the sweeper's hourly job and the manual admin trigger land here.
func (s *Service) ResetAllStats(ctx context.Context) (int, error) {
	touched, err := s.stats.ResetAll(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset attack stats")
	}
	if s.metrics != nil {
		s.metrics.IncrementStatsResetRows(touched)
	}
	return touched, nil
}

// SetWindow tunes an identity's rolling window length.
func (s *Service) SetWindow(ctx context.Context, identityID string, minutes int) error {
	if identityID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "identity_id is required")
	}
	if minutes <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "window_minutes must be positive")
	}
	if err := s.stats.SetWindow(ctx, identityID, minutes); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set window")
	}
	return nil
}

// SweepExpiredBans deactivates every active ban whose expiry has passed.
// Individual failures are logged and skipped so one bad row cannot stall
// the rest of the batch. Returns how many bans were lifted.
func (s *Service) SweepExpiredBans(ctx context.Context) (lifted int, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSweep)
	defer func() { span.End(err) }()

	expired, err := s.bans.ListExpired(ctx, s.now())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expired bans")
	}

	for _, record := range expired {
		if err := s.lift(ctx, record.IdentityID); err != nil {
			s.logger.WarnContext(ctx, "failed to lift expired ban, continuing sweep",
				"error", err,
				"identity_id", record.IdentityID,
			)
			continue
		}
		lifted++
		s.logAudit(ctx, "ban_lifted", "identity_id", record.IdentityID, "cause", "expired")
		if s.metrics != nil {
			s.metrics.IncrementBansLifted("expired")
		}
	}
	return lifted, nil
}
