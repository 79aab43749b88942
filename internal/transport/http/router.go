// Package httptransport wires the HTTP surface: public auth endpoints,
// guarded conversation endpoints, and the admin API. Middleware is composed
// explicitly per route group so the guard's placement is visible here, not
// hidden inside handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	abuseHandler "aegis/internal/abuse/handler"
	abuseMW "aegis/internal/abuse/middleware"
	"aegis/internal/abuse/models"
	identityHandler "aegis/internal/identity/handler"
	"aegis/internal/platform/middleware"
	"aegis/internal/transport/httputil"
)

type Config struct {
	Identity   *identityHandler.Handler
	Admin      *abuseHandler.Handler
	Guard      *abuseMW.Middleware
	Validator  middleware.TokenValidator
	BanChecker middleware.BanChecker
	AdminToken string
	Logger     *slog.Logger
}

// NewRouter builds the full route tree. Guarded routes sit behind auth
// first and the abuse guard second, so every tracked event is attributed
// to a validated identity.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	cfg.Identity.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.BanChecker, cfg.Logger))

		r.With(cfg.Guard.Guard(models.ActionSession)).
			Post("/sessions", handleCreateSession)
		r.With(cfg.Guard.Guard(models.ActionConversation)).
			Post("/chat", handleCreateMessage)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken, cfg.Logger))
		cfg.Admin.RegisterAdmin(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleCreateSession implements POST /sessions. The conversation backend
// is out of scope here; the endpoint exists to exercise the guard and
// returns a placeholder session.
func handleCreateSession(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"session_id":  uuid.NewString(),
		"identity_id": middleware.GetIdentityID(r.Context()),
		"created_at":  time.Now().UTC(),
	})
}

// handleCreateMessage implements POST /chat, a placeholder like
// handleCreateSession.
func handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
		"message_id":  uuid.NewString(),
		"identity_id": middleware.GetIdentityID(r.Context()),
		"accepted_at": time.Now().UTC(),
	})
}
