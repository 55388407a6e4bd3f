// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/features/shared"
	"github.com/artom-sites/choirhub/internal/app/identity"
	"github.com/artom-sites/choirhub/internal/app/stats"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/authz"
	"github.com/artom-sites/choirhub/internal/app/system/timeouts"
)

// Handler serves superadmin-only operations.
type Handler struct {
	Backfill *stats.Backfill
	Authz    *identity.Authorizer
	Log      *zap.Logger
}

func NewHandler(backfill *stats.Backfill, az *identity.Authorizer, log *zap.Logger) *Handler {
	return &Handler{Backfill: backfill, Authz: az, Log: log}
}

// ServeBackfill handles POST /admin/backfill. Superadmin only. Runs
// synchronously under the batch timeout and returns the run report;
// re-running is always safe because each run fully overwrites.
func (h *Handler) ServeBackfill(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	super, err := h.Authz.IsSuperAdmin(r.Context(), uid)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("authorize: %v", err))
		return
	}
	if !super {
		shared.Error(w, h.Log, apperr.PermissionDeniedf("backfill is superadmin-only"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	h.Log.Info("backfill started", zap.String("uid", uid))
	report, err := h.Backfill.Run(ctx)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("backfill: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, report)
}
