// internal/app/features/groupstats/routes.go
package groupstats

import "github.com/go-chi/chi/v5"

// Routes returns the stats subrouter, mounted at /groups/{groupID}/stats.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}
