// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Register attaches the Google sign-in endpoints to the /auth subrouter.
func Register(r chi.Router, h *Handler) {
	r.Get("/google", h.ServeLogin)
	r.Get("/google/callback", h.ServeCallback)
}
