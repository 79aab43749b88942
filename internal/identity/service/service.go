// Package service implements account registration, login, and session
// validation. It is the abuse subsystem's collaborator: it answers
// existence checks and invalidates sessions when a ban lands.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"aegis/internal/identity/device"
	"aegis/internal/identity/models"
	"aegis/internal/identity/token"
	platformMW "aegis/internal/platform/middleware"
	dErrors "aegis/pkg/domain-errors"
)

// IdentityStore persists accounts.
type IdentityStore interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByUsername(ctx context.Context, username string) (*models.Identity, error)
	GetByID(ctx context.Context, identityID string) (*models.Identity, error)
	Exists(ctx context.Context, identityID string) (bool, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	InvalidateAll(ctx context.Context, identityID string) (int, error)
}

// PermissionStore seeds and reads the access-permission projection.
type PermissionStore interface {
	Restore(ctx context.Context, identityID string) error
	Get(ctx context.Context, identityID string) (*int, error)
}

type Service struct {
	identities  IdentityStore
	sessions    SessionStore
	permissions PermissionStore
	tokens      *token.Manager

	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
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

func New(identities IdentityStore, sessions SessionStore, permissions PermissionStore, tokens *token.Manager, opts ...Option) (*Service, error) {
	if identities == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if permissions == nil {
		return nil, fmt.Errorf("permission store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token manager is required")
	}

	svc := &Service{
		identities:  identities,
		sessions:    sessions,
		permissions: permissions,
		tokens:      tokens,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates an account and seeds its permission row.
func (s *Service) Register(ctx context.Context, username, password string) (*models.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	identity, err := models.NewIdentity(username, string(hash), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}
	if err := s.permissions.Restore(ctx, identity.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to seed permission row",
			"error", err,
			"identity_id", identity.ID,
		)
	}

	s.logger.InfoContext(ctx, "identity registered",
		"event", "identity_registered",
		"log_type", "audit",
		"identity_id", identity.ID,
	)
	return identity, nil
}

// Authenticate verifies credentials, opens a session, and returns a signed
// token for it. The user agent is recorded as the session's device name.
func (s *Service) Authenticate(ctx context.Context, username, password, userAgent string) (*models.LoginResponse, error) {
	identity, err := s.identities.GetByUsername(ctx, username)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	if identity == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}

	session, err := models.NewSession(identity.ID, device.DisplayName(userAgent), s.tokens.TTL(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	signed, err := s.tokens.Generate(identity.ID, session.ID, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "identity authenticated",
		"event", "identity_authenticated",
		"log_type", "audit",
		"identity_id", identity.ID,
		"session_id", session.ID,
		"device", session.DeviceName,
	)
	return &models.LoginResponse{
		Token:     signed,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
		Device:    session.DeviceName,
	}, nil
}

// ValidateToken checks the token signature and that its session is still
// live. Satisfies the auth middleware's validator so a ban's session
// invalidation rejects tokens immediately.
func (s *Service) ValidateToken(tokenString string) (*platformMW.TokenClaims, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(context.Background(), claims.SessionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if session == nil || !session.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session is no longer valid")
	}
	if session.IsExpired(s.now()) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session has expired")
	}

	return &platformMW.TokenClaims{
		IdentityID: claims.IdentityID,
		SessionID:  claims.SessionID,
	}, nil
}

// InvalidateAll revokes every live session the identity holds. Called by
// the abuse service when it imposes a ban.
func (s *Service) InvalidateAll(ctx context.Context, identityID string) error {
	count, err := s.sessions.InvalidateAll(ctx, identityID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to invalidate sessions")
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "sessions invalidated",
			"event", "sessions_invalidated",
			"log_type", "audit",
			"identity_id", identityID,
			"count", count,
		)
	}
	return nil
}

// Exists reports whether the identity is registered. Satisfies the abuse
// service's directory check for admin bans.
func (s *Service) Exists(ctx context.Context, identityID string) (bool, error) {
	return s.identities.Exists(ctx, identityID)
}
