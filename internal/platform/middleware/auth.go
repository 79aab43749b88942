package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates bearer tokens handed out by the identity service.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// BanChecker answers whether an identity is currently banned. Banned
// identities are rejected before any handler runs, even with a valid token.
type BanChecker interface {
	IsBanned(ctx context.Context, identityID string) (bool, string, error)
}

// TokenClaims are the claims the router needs from a validated token.
type TokenClaims struct {
	IdentityID string
	SessionID  string
}

type contextKeyIdentityID struct{}
type contextKeySessionID struct{}

// GetIdentityID retrieves the authenticated identity ID from the context.
func GetIdentityID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyIdentityID{}).(string); ok {
		return id
	}
	return ""
}

// GetSessionID retrieves the session ID from the context.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeySessionID{}).(string); ok {
		return id
	}
	return ""
}

// WithIdentity stores identity and session IDs on the context. Exposed for
// handler tests.
func WithIdentity(ctx context.Context, identityID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, contextKeyIdentityID{}, identityID)
	return context.WithValue(ctx, contextKeySessionID{}, sessionID)
}

// RequireAuth validates the bearer token and rejects banned identities.
// The ban check runs on every authenticated request so a ban takes effect
// immediately, not just at login.
func RequireAuth(validator TokenValidator, banlist BanChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if banlist != nil {
				banned, status, err := banlist.IsBanned(ctx, claims.IdentityID)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check ban status",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					writeAuthError(w, http.StatusInternalServerError, "internal_error", "Failed to validate access")
					return
				}
				if banned {
					logger.WarnContext(ctx, "forbidden access - identity banned",
						"identity_id", claims.IdentityID,
						"request_id", GetRequestID(ctx),
					)
					writeAuthError(w, http.StatusForbidden, "account_banned", status)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, claims.IdentityID, claims.SessionID)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `","error_description":"` + description + `"}`))
}
