// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// MeRoutes returns the caller-account subrouter, mounted under /me.
func MeRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeMe)
	r.Delete("/", h.ServeDeleteMe)
	r.Post("/tokens", h.ServeAddToken)
	r.Get("/notifications", h.ServeNotifications)
	return r
}

// UserRoutes returns the admin account-management subrouter, mounted
// under /users.
func UserRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Delete("/{userID}", h.ServeDeleteUser)
	return r
}
