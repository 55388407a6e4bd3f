// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Register attaches the password-auth endpoints to the /auth subrouter.
func Register(r chi.Router, h *Handler) {
	r.Post("/login", h.ServeLogin)
	r.Post("/signup", h.ServeSignup)
}
