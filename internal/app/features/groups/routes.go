// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for group membership operations, mounted
// under /groups behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Post("/join", h.ServeJoin)
	r.Post("/{groupID}/leave", h.ServeLeave)
	r.Post("/{groupID}/claim", h.ServeClaim)
	r.Post("/{groupID}/activate", h.ServeSetActive)
	r.Post("/{groupID}/members/merge", h.ServeMerge)
	r.Patch("/{groupID}/members/{memberID}", h.ServeUpdateMember)
	return r
}
