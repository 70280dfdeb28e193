// internal/app/features/roster/routes.go
package roster

import (
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the roster subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(models.RoleAdmin, models.RolePresident))
		r.Get("/", h.Show)
		r.Get("/groups", h.Groups)
	})
	return r
}
