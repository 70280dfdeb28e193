// internal/app/features/archives/routes.go
package archives

import (
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the admin archive subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(models.RoleAdmin))
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Show)
		r.Delete("/{id}", h.Delete)
	})
	return r
}
