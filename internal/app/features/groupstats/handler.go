// internal/app/features/groupstats/handler.go
package groupstats

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/features/shared"
	"github.com/artom-sites/choirhub/internal/app/identity"
	statsstore "github.com/artom-sites/choirhub/internal/app/store/stats"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/authz"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// Handler serves the derived statistics summary. Read-only: the
// summary is computed by the aggregator and the backfill job, never
// here.
type Handler struct {
	Stats *statsstore.Store
	Authz *identity.Authorizer
	Log   *zap.Logger
}

func NewHandler(stats *statsstore.Store, az *identity.Authorizer, log *zap.Logger) *Handler {
	return &Handler{Stats: stats, Authz: az, Log: log}
}

// Serve handles GET /groups/{groupID}/stats. A group with no summary
// yet returns an empty one rather than a 404; the distinction between
// "no services yet" and "aggregator has not run" is not the client's
// problem.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		shared.Error(w, h.Log, apperr.InvalidArgumentf("malformed group id"))
		return
	}
	member, err := h.Authz.IsMember(r.Context(), uid, gid)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("authorize: %v", err))
		return
	}
	if !member {
		shared.Error(w, h.Log, apperr.PermissionDeniedf("not a member of this group"))
		return
	}

	sum, err := h.Stats.Get(r.Context(), gid)
	if err == statsstore.ErrNotFound {
		shared.JSON(w, http.StatusOK, models.StatsSummary{ID: gid})
		return
	}
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("load summary: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, sum)
}
