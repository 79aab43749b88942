// Package middleware exposes the request-path abuse guard. The guard is
// composed explicitly in the router on each protected route, one kind per
// route.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"aegis/internal/abuse/models"
	platformMW "aegis/internal/platform/middleware"
	"aegis/internal/transport/httputil"
)

// Tracker is the slice of the abuse service the guard calls per request.
type Tracker interface {
	Track(ctx context.Context, identityID string, kind models.ActionKind) (*models.TrackResult, error)
}

type Middleware struct {
	tracker Tracker
	logger  *slog.Logger
}

func New(tracker Tracker, logger *slog.Logger) *Middleware {
	return &Middleware{
		tracker: tracker,
		logger:  logger,
	}
}

// Guard records one event of the given kind for the authenticated identity
// and rejects the request when the tracker's verdict is a block. Requests
// without an identity on the context pass through untracked; the guard sits
// behind auth, so that only happens on misconfigured routes.
func (m *Middleware) Guard(kind models.ActionKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identityID := platformMW.GetIdentityID(ctx)
			if identityID == "" {
				m.logger.WarnContext(ctx, "abuse guard on unauthenticated route, skipping",
					"path", r.URL.Path,
					"kind", kind,
				)
				next.ServeHTTP(w, r)
				return
			}

			result, err := m.tracker.Track(ctx, identityID, kind)
			if err != nil {
				m.logger.ErrorContext(ctx, "abuse tracking failed, allowing request",
					"error", err,
					"identity_id", identityID,
					"kind", kind,
				)
				next.ServeHTTP(w, r)
				return
			}

			if result.Blocked {
				writeAbuseBan(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAbuseBan(w http.ResponseWriter, result *models.TrackResult) {
	if result.BanExpiresAt != nil {
		retryAfter := int(time.Until(*result.BanExpiresAt).Seconds())
		if retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		}
	}
	httputil.WriteJSON(w, http.StatusForbidden, &models.AbuseBanResponse{
		Error:   "abuse_ban",
		Message: result.Status,
		RetryAt: result.BanExpiresAt,
	})
}
