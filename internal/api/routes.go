package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/software-catalog/internal/pkg/httputil"
)

// SetupRoutes configures all routes. The /api group requires an admin
// session when an auth manager is configured.
func SetupRoutes(h *Handlers, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if deps.Health != nil {
		r.Get("/health", deps.Health.HandleHealth)
		r.Get("/health/live", deps.Health.HandleLiveness)
		r.Get("/health/ready", deps.Health.HandleReadiness)
	}

	if deps.Auth != nil {
		r.Get("/auth/login", deps.Auth.HandleLogin)
		r.Get("/auth/callback", deps.Auth.HandleCallback)
		r.Get("/auth/logout", deps.Auth.HandleLogout)
		r.Get("/auth/user", deps.Auth.HandleUserInfo)
	}

	r.Route("/api", func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.RequireAdmin)
		}

		r.Route("/import", func(r chi.Router) {
			r.Post("/", h.HandleImport)
			r.Post("/demo", h.HandleImportDemo)
			r.Post("/file", h.HandleImportFile)
			r.Get("/jobs/{id}", h.HandleImportJob)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/entries", h.HandleListEntries)
			r.Get("/entries/{id}", h.HandleGetEntry)
			r.Delete("/entries/{id}", h.HandleDeleteEntry)
			r.Get("/categories", h.HandleListCategories)
			r.Post("/categories", h.HandleCreateCategory)
			r.Get("/target-groups", h.HandleListTargetGroups)
			r.Post("/target-groups", h.HandleCreateTargetGroup)
			r.Get("/export.xlsx", h.HandleExport)
		})

		r.Post("/assist/description", h.HandleDraftDescription)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.NotFound(w, "not found")
	})

	return r
}
