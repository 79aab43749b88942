// Package service implements the abuse subsystem's operations: the
// request-path guard, the ban registry, and the administrative surface.
// Stores are pure I/O; every decision (classification, escalation, lazy
// expiry) lives here or in the pure detector/escalation packages.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aegis/internal/abuse/config"
	"aegis/internal/abuse/detector"
	"aegis/internal/abuse/escalation"
	"aegis/internal/abuse/metrics"
	"aegis/internal/abuse/models"
	"aegis/internal/abuse/tracer"
)

// StatsStore persists per-identity event counters.
type StatsStore interface {
	Increment(ctx context.Context, identityID string, kind models.ActionKind) (*models.AttackStats, error)
	Get(ctx context.Context, identityID string) (*models.AttackStats, error)
	Flag(ctx context.Context, identityID string) error
	SetWindow(ctx context.Context, identityID string, minutes int) error
	ResetAll(ctx context.Context) (int, error)
}

// BanStore persists ban records, one per identity.
type BanStore interface {
	GetActive(ctx context.Context, identityID string) (*models.BanRecord, error)
	Upsert(ctx context.Context, record *models.BanRecord) error
	Deactivate(ctx context.Context, identityID string) (bool, error)
	ListActive(ctx context.Context) ([]*models.BanRecord, error)
	ListExpired(ctx context.Context, now time.Time) ([]*models.BanRecord, error)
}

// PermissionStore is the AccessPermission projection. The ban registry is
// the sole writer of ban activity; permissions follow it.
type PermissionStore interface {
	Block(ctx context.Context, identityID string) error
	Restore(ctx context.Context, identityID string) error
}

// SessionInvalidator revokes an identity's live sessions when a ban lands.
type SessionInvalidator interface {
	InvalidateAll(ctx context.Context, identityID string) error
}

// IdentityDirectory answers existence checks for admin operations.
type IdentityDirectory interface {
	Exists(ctx context.Context, identityID string) (bool, error)
}

type Service struct {
	stats       StatsStore
	bans        BanStore
	permissions PermissionStore
	sessions    SessionInvalidator
	directory   IdentityDirectory

	detector *detector.Detector
	policy   *escalation.Policy

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithSessionInvalidator(inv SessionInvalidator) Option {
	return func(s *Service) {
		s.sessions = inv
	}
}

func WithIdentityDirectory(dir IdentityDirectory) Option {
	return func(s *Service) {
		s.directory = dir
	}
}

// WithClock overrides the service's time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(stats StatsStore, bans BanStore, permissions PermissionStore, cfg *config.Config, opts ...Option) (*Service, error) {
	if stats == nil {
		return nil, fmt.Errorf("stats store is required")
	}
	if bans == nil {
		return nil, fmt.Errorf("ban store is required")
	}
	if permissions == nil {
		return nil, fmt.Errorf("permission store is required")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	svc := &Service{
		stats:       stats,
		bans:        bans,
		permissions: permissions,
		detector:    detector.New(cfg.Detector),
		policy:      escalation.New(cfg.Escalation),
		logger:      slog.Default(),
		tracer:      tracer.NewNoop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	args := append(attrs, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
