// internal/app/features/services/handler.go
package services

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/features/shared"
	"github.com/artom-sites/choirhub/internal/app/identity"
	groupstore "github.com/artom-sites/choirhub/internal/app/store/groups"
	notificationstore "github.com/artom-sites/choirhub/internal/app/store/notifications"
	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/authz"
	"github.com/artom-sites/choirhub/internal/app/system/htmlsanitize"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// Handler serves event-record (service) endpoints. Planning and
// finalization need an elevated role; voting is open to every member,
// each for their own slot. All writes except votes reach the stats
// summary through the change guard.
type Handler struct {
	Services      *servicestore.Store
	Groups        *groupstore.Store
	Notifications *notificationstore.Store
	Authz         *identity.Authorizer
	Log           *zap.Logger
}

func NewHandler(services *servicestore.Store, groups *groupstore.Store, notifications *notificationstore.Store, az *identity.Authorizer, log *zap.Logger) *Handler {
	return &Handler{Services: services, Groups: groups, Notifications: notifications, Authz: az, Log: log}
}

type songInput struct {
	SongID string `json:"song_id"`
	Title  string `json:"title"`
}

func (h *Handler) sanitizeSongs(in []songInput) ([]models.SongRef, error) {
	out := make([]models.SongRef, 0, len(in))
	for _, s := range in {
		if s.SongID == "" {
			return nil, apperr.InvalidArgumentf("song_id is required")
		}
		out = append(out, models.SongRef{
			SongID: s.SongID,
			Title:  htmlsanitize.Name(s.Title),
		})
	}
	return out, nil
}

func (h *Handler) requireGroupAdmin(r *http.Request, uid string, groupID primitive.ObjectID) error {
	ok, err := h.Authz.IsGroupAdmin(r.Context(), uid, groupID)
	if err != nil {
		return apperr.Internalf("authorize: %v", err)
	}
	if !ok {
		return apperr.PermissionDeniedf("requires an elevated role in this group")
	}
	return nil
}

type createRequest struct {
	Date  time.Time   `json:"date"`
	Songs []songInput `json:"songs,omitempty"`
}

// ServeCreate handles POST /groups/{groupID}/services.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
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
	var req createRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if req.Date.IsZero() {
		shared.Error(w, h.Log, apperr.InvalidArgumentf("date is required"))
		return
	}
	if err := h.requireGroupAdmin(r, uid, gid); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	songs, err := h.sanitizeSongs(req.Songs)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	svc := &models.Service{
		ID:      primitive.NewObjectID(),
		GroupID: gid,
		Date:    req.Date.UTC(),
		Songs:   songs,
	}
	if err := h.Services.Insert(r.Context(), svc); err != nil {
		shared.Error(w, h.Log, apperr.Internalf("insert service: %v", err))
		return
	}
	h.notifyRoster(r, svc)
	shared.JSON(w, http.StatusCreated, svc)
}

// notifyRoster records a notification for every account-linked roster
// member when a service is planned. Best-effort; delivery to devices is
// a separate concern that reads these records and the users' push
// tokens.
func (h *Handler) notifyRoster(r *http.Request, svc *models.Service) {
	g, err := h.Groups.GetByID(r.Context(), svc.GroupID)
	if err != nil {
		h.Log.Warn("notify roster: load group failed", zap.Error(err))
		return
	}
	title := "New service planned"
	body := g.Name + " has a service on " + svc.Date.Format("Jan 2, 2006")
	for i := range g.Members {
		m := &g.Members[i]
		if m.IsDuplicate || m.AccountUID == "" {
			continue
		}
		n := &models.Notification{UserID: m.AccountUID, Title: title, Body: body}
		if err := h.Notifications.Insert(r.Context(), n); err != nil {
			h.Log.Warn("notify roster: insert failed",
				zap.String("uid", m.AccountUID), zap.Error(err))
		}
	}
}

// ServeList handles GET /groups/{groupID}/services.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
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

	all, err := h.Services.FindByGroup(r.Context(), gid)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("list services: %v", err))
		return
	}
	out := make([]models.Service, 0, len(all))
	for _, s := range all {
		if !s.IsDeleted() {
			out = append(out, s)
		}
	}
	shared.JSON(w, http.StatusOK, out)
}

// serviceFromURL loads the service named by the {serviceID} URL param.
func (h *Handler) serviceFromURL(r *http.Request) (*models.Service, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "serviceID"))
	if err != nil {
		return nil, apperr.InvalidArgumentf("malformed service id")
	}
	svc, err := h.Services.GetByID(r.Context(), id)
	if err == servicestore.ErrNotFound {
		return nil, apperr.NotFoundf("service %s", id.Hex())
	}
	if err != nil {
		return nil, apperr.Internalf("load service: %v", err)
	}
	return svc, nil
}

type voteRequest struct {
	Present bool `json:"present"`
}

// ServeVote handles POST /services/{serviceID}/vote. The vote is cast
// for the caller's own roster slot; a caller with no slot in the group
// votes under their UID, which doubles as a slot id.
func (h *Handler) ServeVote(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	svc, err := h.serviceFromURL(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	var req voteRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	member, err := h.Authz.IsMember(r.Context(), uid, svc.GroupID)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("authorize: %v", err))
		return
	}
	if !member {
		shared.Error(w, h.Log, apperr.PermissionDeniedf("not a member of this group"))
		return
	}

	slotID := uid
	if g, err := h.Groups.GetByID(r.Context(), svc.GroupID); err == nil {
		if i := g.SlotResolvingTo(uid); i >= 0 {
			slotID = g.Members[i].ID
		}
	}

	err = h.Services.Vote(r.Context(), svc.ID, slotID, req.Present)
	if err == servicestore.ErrNotFound {
		shared.Error(w, h.Log, apperr.NotFoundf("service is finalized or deleted"))
		return
	}
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("record vote: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": "voted", "slot_id": slotID})
}

type finalizeRequest struct {
	Finalized *bool `json:"finalized,omitempty"`
}

// ServeFinalize handles POST /services/{serviceID}/finalize. Absent
// body fields default to finalizing; passing {"finalized":false}
// reopens the record, and both directions recompute via the guard.
func (h *Handler) ServeFinalize(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	svc, err := h.serviceFromURL(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	finalized := true
	if r.ContentLength > 0 {
		var req finalizeRequest
		if err := shared.Decode(r, &req); err != nil {
			shared.Error(w, h.Log, err)
			return
		}
		if req.Finalized != nil {
			finalized = *req.Finalized
		}
	}
	if err := h.requireGroupAdmin(r, uid, svc.GroupID); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if err := h.Services.SetFinalized(r.Context(), svc.ID, finalized); err != nil {
		shared.Error(w, h.Log, apperr.Internalf("set finalized: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, map[string]bool{"finalized": finalized})
}

type songsRequest struct {
	Songs []songInput `json:"songs"`
}

// ServeSetSongs handles PUT /services/{serviceID}/songs.
func (h *Handler) ServeSetSongs(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	svc, err := h.serviceFromURL(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	var req songsRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if err := h.requireGroupAdmin(r, uid, svc.GroupID); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	songs, err := h.sanitizeSongs(req.Songs)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if err := h.Services.SetSongs(r.Context(), svc.ID, songs); err != nil {
		shared.Error(w, h.Log, apperr.Internalf("set songs: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, map[string]int{"songs": len(songs)})
}

// ServeDelete handles DELETE /services/{serviceID} (soft delete).
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	svc, err := h.serviceFromURL(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if err := h.requireGroupAdmin(r, uid, svc.GroupID); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	err = h.Services.SoftDelete(r.Context(), svc.ID)
	if err == servicestore.ErrNotFound {
		shared.JSON(w, http.StatusOK, map[string]string{"status": "already_deleted"})
		return
	}
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("soft delete: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
