package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/auth"
	"github.com/incidentops/incident-management/internal/engineer"
	"github.com/incidentops/incident-management/internal/incident"
	"github.com/incidentops/incident-management/internal/part"
	"github.com/incidentops/incident-management/internal/transport/middleware"
	"github.com/incidentops/incident-management/internal/transport/swagger"
	"github.com/incidentops/incident-management/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Incident *incident.Handler
	Part     *part.Handler
	Engineer *engineer.Handler
	Health   *HealthHandler
	RBAC     *auth.RBACAuthorization
}

// NewRouter wires middleware and routes. Everything below the session
// middleware requires a valid session cookie or bearer token.
func NewRouter(cfg *internal.Config, h Handlers, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.App.MaxContentLength > 0 {
		r.Use(maxBytes(cfg.App.MaxContentLength))
	}

	// Public routes.
	r.Get("/", landing)
	r.Get("/health", h.Health.Health)
	r.Get("/ping", h.Health.Ping)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Get("/login", h.Auth.LoginPage)
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
	})
	swagger.RegisterRoutes(r)

	// Session-protected routes.
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.AuthMiddleware)

		r.Get("/dashboard", h.Incident.Dashboard)
		r.Get("/search", h.Incident.Search)
		r.Get("/api/stats", h.Incident.Stats)
		r.Post("/report", h.Incident.ReportIncident)

		r.Route("/incidents", func(r chi.Router) {
			r.Get("/", h.Incident.ListIncidents)
			r.Post("/", h.Incident.CreateIncident)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Incident.GetIncident)
				r.Post("/status", h.Incident.UpdateStatus)
				r.With(h.RBAC.RequireManager()).Post("/assign", h.Incident.AssignEngineer)
				r.Get("/parts", h.Incident.GetParts)
				r.Post("/parts", h.Incident.AddParts)
			})
		})

		r.Route("/parts", func(r chi.Router) {
			r.Get("/", h.Part.ListParts)
			r.With(h.RBAC.RequireManager()).Post("/", h.Part.CreatePart)
			r.Get("/low-stock", h.Part.ListLowStock)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Part.GetPart)
				r.Get("/usage", h.Part.GetUsage)
				r.With(h.RBAC.RequireManager()).Post("/stock", h.Part.AdjustStock)
			})
		})

		r.Route("/engineers", func(r chi.Router) {
			r.Get("/", h.Engineer.ListEngineers)
			r.Get("/{id}", h.Engineer.GetEngineer)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", h.User.GetCurrentUser)
			r.Patch("/", h.User.UpdateProfile)
			r.Post("/password", h.User.ChangePassword)
		})
	})

	return r
}

func landing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"service":"incident-management","version":"1.0.0"}`))
}

func maxBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
