// internal/app/features/admin/routes.go
package admin

import "github.com/go-chi/chi/v5"

// Routes returns the superadmin subrouter, mounted under /admin.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/backfill", h.ServeBackfill)
	return r
}
