// Package token issues and validates the HMAC-signed session tokens the
// identity service hands out at login.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "aegis/pkg/domain-errors"
)

// SessionClaims binds a token to one identity and one session. The sid
// claim is what lets a ban kill live tokens: validation checks the session
// is still active, not just the signature.
type SessionClaims struct {
	IdentityID string `json:"identity_id"`
	SessionID  string `json:"sid"`
	jwt.RegisteredClaims
}

type Manager struct {
	signingKey []byte
	ttl        time.Duration
}

func NewManager(signingKey string, ttl time.Duration) *Manager {
	return &Manager{
		signingKey: []byte(signingKey),
		ttl:        ttl,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Generate signs a session token for the identity.
func (m *Manager) Generate(identityID, sessionID string, now time.Time) (string, error) {
	if identityID == "" || sessionID == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "identity and session IDs are required")
	}

	claims := SessionClaims{
		IdentityID: identityID,
		SessionID:  sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the claims.
func (m *Manager) Parse(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || claims.IdentityID == "" || claims.SessionID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
