package service

import (
	"context"
	"fmt"

	"aegis/internal/abuse/models"
	"aegis/internal/abuse/tracer"
)

// Track records one guarded request-path event and evaluates the identity
// against the abuse thresholds. On a positive verdict it imposes (or
// escalates) a ban, blocks the identity's permission, invalidates its
// sessions, and reports the expiry so the caller can surface a retry time.
//
// Persistence failures here are fail-open: detection must not become an
// availability outage, so the action is allowed to proceed and the
// failure is logged.
func (s *Service) Track(ctx context.Context, identityID string, kind models.ActionKind) (*models.TrackResult, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanTrack,
		tracer.String(tracer.AttrIdentityID, identityID),
		tracer.String(tracer.AttrActionKind, kind.String()),
	)
	var spanErr error
	defer func() { span.End(spanErr) }()

	if s.metrics != nil {
		s.metrics.IncrementEventsTracked(kind.String())
	}

	stats, err := s.stats.Increment(ctx, identityID, kind)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record abuse event, allowing request",
			"error", err,
			"identity_id", identityID,
			"kind", kind,
		)
		spanErr = err
		return &models.TrackResult{Blocked: false}, nil
	}

	verdict := s.detector.Evaluate(stats)
	span.SetAttributes(
		tracer.Int(tracer.AttrTotalEvents, verdict.TotalEvents),
		tracer.Bool(tracer.AttrBlocked, verdict.Abusive),
	)
	if !verdict.Abusive {
		return &models.TrackResult{Blocked: false}, nil
	}
	span.SetAttributes(tracer.String(tracer.AttrTrigger, verdict.Trigger))

	if s.metrics != nil {
		s.metrics.IncrementDetections()
	}
	if err := s.stats.Flag(ctx, identityID); err != nil {
		s.logger.WarnContext(ctx, "failed to flag identity", "error", err, "identity_id", identityID)
	}

	duration := s.policy.DurationMinutes(verdict.TotalEvents)
	description := fmt.Sprintf("abuse detected: %d events in a %d minute window (%s)",
		verdict.TotalEvents, stats.WindowMinutes, verdict.Trigger)

	record, err := models.NewBanRecord(identityID, models.BanReasonAbuseDetected, description, &duration, s.now())
	if err != nil {
		spanErr = err
		return &models.TrackResult{Blocked: false}, nil
	}

	// The verdict stands even if persistence falters: the in-flight
	// request is rejected either way, and the next evaluation re-imposes.
	if err := s.impose(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist abuse ban",
			"error", err,
			"identity_id", identityID,
		)
	}
	s.invalidateSessions(ctx, identityID)

	s.logAudit(ctx, "abuse_ban_imposed",
		"identity_id", identityID,
		"total_events", verdict.TotalEvents,
		"trigger", verdict.Trigger,
		"duration_minutes", duration,
		"expires_at", record.ExpiresAt,
	)
	if s.metrics != nil {
		s.metrics.IncrementBansImposed(string(models.BanReasonAbuseDetected))
	}

	return &models.TrackResult{
		Blocked:      true,
		BanExpiresAt: record.ExpiresAt,
		Status:       record.StatusText(),
	}, nil
}

// impose writes the ban record and flips the permission projection.
func (s *Service) impose(ctx context.Context, record *models.BanRecord) error {
	if err := s.bans.Upsert(ctx, record); err != nil {
		return fmt.Errorf("upsert ban record: %w", err)
	}
	if err := s.permissions.Block(ctx, record.IdentityID); err != nil {
		return fmt.Errorf("block permission: %w", err)
	}
	return nil
}

func (s *Service) invalidateSessions(ctx context.Context, identityID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.InvalidateAll(ctx, identityID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate sessions", "error", err, "identity_id", identityID)
	}
}
