// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

// Register attaches the logout endpoint to the /auth subrouter.
func Register(r chi.Router, h *Handler) {
	r.Post("/logout", h.Serve)
}
