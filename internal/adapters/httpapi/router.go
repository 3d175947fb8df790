// Package httpapi exposes the primary ports as a JSON API under /api/v1.
package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/cts/internal/ports/primary"
)

// Services are the primary ports served by the router.
type Services struct {
	Auth      primary.AuthService
	Templates primary.FormTemplateService
	Projects  primary.ProjectService
	Records   primary.RecordService
}

// NewRouter builds the API router. Everything but login requires a token.
func NewRouter(svc Services) *chi.Mux {
	authH := &AuthHandler{svc: svc.Auth}
	templateH := &TemplateHandler{svc: svc.Templates}
	projectH := &ProjectHandler{svc: svc.Projects}
	recordH := &RecordHandler{svc: svc.Records}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authH.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(svc.Auth))

			// Form templates
			r.Get("/templates", templateH.List)
			r.Post("/templates", templateH.Create)
			r.Get("/templates/{id}", templateH.Get)
			r.Put("/templates/{id}", templateH.Update)
			r.Delete("/templates/{id}", templateH.Delete)

			// Projects
			r.Get("/projects", projectH.List)
			r.Post("/projects", projectH.Create)
			r.Get("/projects/{id}", projectH.Get)
			r.Put("/projects/{id}", projectH.Update)
			r.Delete("/projects/{id}", projectH.Delete)

			// Dynamic tables
			r.Get("/tables/{kind}/{tableID}/schema", recordH.Schema)
			r.Post("/tables/{kind}/{tableID}/search", recordH.Search)
			r.Post("/tables/{kind}/{tableID}/records", recordH.Add)
			r.Get("/tables/{kind}/{tableID}/records/{id}", recordH.Get)
			r.Put("/tables/{kind}/{tableID}/records/{id}", recordH.Update)
			r.Delete("/tables/{kind}/{tableID}/records/{id}", recordH.Delete)
			r.Get("/tables/{kind}/{tableID}/codes/{code}", recordH.GetByCode)

			// Form submissions
			r.Post("/forms/submissions", recordH.Submit)
			r.Put("/forms/submissions", recordH.Resubmit)
		})
	})

	return r
}
