// internal/app/features/services/routes.go
package services

import "github.com/go-chi/chi/v5"

// GroupRoutes returns the service endpoints nested under a group,
// mounted at /groups/{groupID}/services.
func GroupRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	return r
}

// Routes returns the per-service endpoints, mounted at /services.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{serviceID}/vote", h.ServeVote)
	r.Post("/{serviceID}/finalize", h.ServeFinalize)
	r.Put("/{serviceID}/songs", h.ServeSetSongs)
	r.Delete("/{serviceID}", h.ServeDelete)
	return r
}
