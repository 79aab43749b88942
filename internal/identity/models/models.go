// Package models holds the identity domain types: accounts, sessions, and
// the access-permission projection the abuse subsystem writes through.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "aegis/pkg/domain-errors"
)

// Identity is a registered account.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewIdentity(username, passwordHash string, now time.Time) (*Identity, error) {
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &Identity{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// Session is one authenticated login. A ban invalidates every session the
// identity holds; the bearer token dies with the session.
type Session struct {
	ID         string    `json:"id"`
	IdentityID string    `json:"identity_id"`
	DeviceName string    `json:"device_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Active     bool      `json:"active"`
}

func NewSession(identityID, deviceName string, ttl time.Duration, now time.Time) (*Session, error) {
	if identityID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity_id cannot be empty")
	}
	if ttl <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session ttl must be positive")
	}
	return &Session{
		ID:         uuid.NewString(),
		IdentityID: identityID,
		DeviceName: deviceName,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		Active:     true,
	}, nil
}

func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Username = strings.TrimSpace(strings.ToLower(r.Username))
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Username) > 64 {
		return dErrors.New(dErrors.CodeValidation, "username must be 64 characters or less")
	}
	if len(r.Password) > 128 {
		return dErrors.New(dErrors.CodeValidation, "password must be 128 characters or less")
	}
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Username = strings.TrimSpace(strings.ToLower(r.Username))
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

type LoginResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Device    string    `json:"device,omitempty"`
}

type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
