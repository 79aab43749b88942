// Package handler exposes the public identity endpoints: registration and
// login.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aegis/internal/identity/models"
	platformMW "aegis/internal/platform/middleware"
	"aegis/internal/transport/httputil"
	dErrors "aegis/pkg/domain-errors"
)

type Service interface {
	Register(ctx context.Context, username, password string) (*models.Identity, error)
	Authenticate(ctx context.Context, username, password, userAgent string) (*models.LoginResponse, error)
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

func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// HandleRegister implements POST /auth/register.
// Input: { "username": "...", "password": "..." }
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := platformMW.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request",
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

	identity, err := h.service.Register(ctx, req.Username, req.Password)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.ErrorContext(ctx, "failed to register identity",
				"error", err,
				"request_id", requestID,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &models.RegisterResponse{
		ID:       identity.ID,
		Username: identity.Username,
	})
}

// HandleLogin implements POST /auth/login.
// Input: { "username": "...", "password": "..." }
// Output: { "token": "...", "session_id": "...", "expires_at": "...", "device": "..." }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := platformMW.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request",
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

	login, err := h.service.Authenticate(ctx, req.Username, req.Password, r.UserAgent())
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.logger.ErrorContext(ctx, "failed to authenticate identity",
				"error", err,
				"request_id", requestID,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, login)
}
