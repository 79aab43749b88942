// Package handler exposes the abuse subsystem's administrative HTTP
// surface: the ban registry, per-identity summaries, and counter tuning.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aegis/internal/abuse/models"
	platformMW "aegis/internal/platform/middleware"
	"aegis/internal/transport/httputil"
	dErrors "aegis/pkg/domain-errors"
)

type Service interface {
	Ban(ctx context.Context, identityID string, reason models.BanReason, description string, durationMinutes *int) (*models.BanRecord, error)
	Unban(ctx context.Context, identityID string) error
	ListBans(ctx context.Context) ([]*models.BanRecord, error)
	Summary(ctx context.Context, identityID string) (*models.AbuseSummary, error)
	ResetAllStats(ctx context.Context) (int, error)
	SetWindow(ctx context.Context, identityID string, minutes int) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/abuse/bans", h.HandleListBans)
	r.Post("/admin/abuse/bans", h.HandleBan)
	r.Delete("/admin/abuse/bans", h.HandleUnban)
	r.Get("/admin/abuse/identities/{identity_id}", h.HandleSummary)
	r.Put("/admin/abuse/identities/{identity_id}/window", h.HandleSetWindow)
	r.Post("/admin/abuse/stats/reset", h.HandleResetStats)
}

// HandleListBans implements GET /admin/abuse/bans.
// Output: { "bans": [...], "count": 2 }
func (h *Handler) HandleListBans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bans, err := h.service.ListBans(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list bans",
			"error", err,
			"request_id", platformMW.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.BanListResponse{
		Bans:  bans,
		Count: len(bans),
	})
}

// HandleBan implements POST /admin/abuse/bans.
// Input: { "identity_id": "...", "reason": "manual", "description": "...", "duration_minutes": 1440 }
// Output: the created ban record. Omitting duration_minutes makes the ban permanent.
func (h *Handler) HandleBan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := platformMW.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req models.BanIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode ban request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Ban(ctx, req.IdentityID, models.BanReason(req.Reason), req.Description, req.DurationMinutes)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to impose ban",
			"error", err,
			"identity_id", req.IdentityID,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// HandleUnban implements DELETE /admin/abuse/bans.
// Input: { "identity_id": "..." }
// Output: { "identity_id": "...", "status": "unbanned" }
func (h *Handler) HandleUnban(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := platformMW.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req models.UnbanIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode unban request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Unban(ctx, req.IdentityID); err != nil {
		h.logger.ErrorContext(ctx, "failed to lift ban",
			"error", err,
			"identity_id", req.IdentityID,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.UnbanResponse{
		IdentityID: req.IdentityID,
		Status:     "unbanned",
	})
}

// HandleSummary implements GET /admin/abuse/identities/{identity_id}.
// Output: { "stats": {...}, "ban": {...} }
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identityID := chi.URLParam(r, "identity_id")

	summary, err := h.service.Summary(ctx, identityID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load abuse summary",
				"error", err,
				"identity_id", identityID,
				"request_id", platformMW.GetRequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// HandleSetWindow implements PUT /admin/abuse/identities/{identity_id}/window.
// Input: { "window_minutes": 5 }
func (h *Handler) HandleSetWindow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := platformMW.GetRequestID(ctx)
	identityID := chi.URLParam(r, "identity_id")

	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req models.SetWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode set window request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SetWindow(ctx, identityID, req.WindowMinutes); err != nil {
		h.logger.ErrorContext(ctx, "failed to set window",
			"error", err,
			"identity_id", identityID,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.SetWindowResponse{
		IdentityID:    identityID,
		WindowMinutes: req.WindowMinutes,
	})
}

// HandleResetStats implements POST /admin/abuse/stats/reset.
// Output: { "rows_reset": 12 }
func (h *Handler) HandleResetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	touched, err := h.service.ResetAllStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reset abuse stats",
			"error", err,
			"request_id", platformMW.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.ResetStatsResponse{
		RowsReset: touched,
	})
}
