// internal/app/features/profile/routes.go
package profile

import (
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the signed-in member's own profile.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.Show)
		r.Put("/", h.Update)
		r.Post("/picture", h.UploadPicture)
		r.Post("/signature", h.UploadSignature)
	})
	return r
}
