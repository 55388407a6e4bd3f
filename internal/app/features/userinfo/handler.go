// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/features/shared"
	"github.com/artom-sites/choirhub/internal/app/membership"
	notificationstore "github.com/artom-sites/choirhub/internal/app/store/notifications"
	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/authz"
)

// notificationListLimit caps GET /me/notifications.
const notificationListLimit = 100

// Handler serves the caller's own account endpoints plus the
// admin-gated account deletion.
type Handler struct {
	Users         *userstore.Store
	Notifications *notificationstore.Store
	Engine        *membership.Engine
	Log           *zap.Logger
}

func NewHandler(users *userstore.Store, notifications *notificationstore.Store, engine *membership.Engine, log *zap.Logger) *Handler {
	return &Handler{Users: users, Notifications: notifications, Engine: engine, Log: log}
}

// ServeMe handles GET /me: the caller's full profile document.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	u, err := h.Users.GetByID(r.Context(), uid)
	if err == userstore.ErrNotFound {
		shared.Error(w, h.Log, apperr.NotFoundf("user %s", uid))
		return
	}
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("load user: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, u)
}

type tokenRequest struct {
	Token string `json:"token"`
}

// ServeAddToken handles POST /me/tokens: registers a push token on the
// caller's account. The store removes the token from any other account
// it was registered on.
func (h *Handler) ServeAddToken(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	var req tokenRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		shared.Error(w, h.Log, apperr.InvalidArgumentf("token is required"))
		return
	}
	err := h.Users.AddNotificationToken(r.Context(), uid, token)
	if err == userstore.ErrNotFound {
		shared.Error(w, h.Log, apperr.NotFoundf("user %s", uid))
		return
	}
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("register token: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

// ServeNotifications handles GET /me/notifications.
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	list, err := h.Notifications.ListByUser(r.Context(), uid, notificationListLimit)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("list notifications: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, list)
}

// ServeDeleteMe handles DELETE /me.
func (h *Handler) ServeDeleteMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	if err := h.Engine.DeleteSelf(r.Context(), uid); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	h.Log.Info("account self-deleted", zap.String("uid", uid))
	shared.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ServeDeleteUser handles DELETE /users/{userID}. The engine enforces
// the elevated-role requirement and rejects self-deletion through this
// path.
func (h *Handler) ServeDeleteUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	target := chi.URLParam(r, "userID")
	if err := h.Engine.DeleteUser(r.Context(), uid, target); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	h.Log.Info("account deleted by admin",
		zap.String("uid", target), zap.String("deleted_by", uid))
	shared.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
