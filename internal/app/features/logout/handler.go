// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/features/shared"
	"github.com/artom-sites/choirhub/internal/app/system/auth"
)

// Handler clears the caller's session.
type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(sm *auth.SessionManager, log *zap.Logger) *Handler {
	return &Handler{SessionMgr: sm, Log: log}
}

// Serve handles POST /auth/logout. Always succeeds; logging out an
// already-logged-out session is a no-op.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("session clear failed", zap.Error(err))
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
