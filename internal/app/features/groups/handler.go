// internal/app/features/groups/handler.go
package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/features/shared"
	"github.com/artom-sites/choirhub/internal/app/membership"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/authz"
	"github.com/artom-sites/choirhub/internal/app/system/htmlsanitize"
)

// Handler exposes the membership engine's group operations as JSON
// endpoints. All routes require a signed-in caller; handlers only
// parse, sanitize, and delegate; every rule lives in the engine.
type Handler struct {
	Engine *membership.Engine
	Log    *zap.Logger
}

func NewHandler(engine *membership.Engine, log *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: log}
}

func groupIDParam(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidArgumentf("malformed group id")
	}
	return id, nil
}

type createRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ServeCreate handles POST /groups.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	var req createRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	g, err := h.Engine.CreateGroup(r.Context(), uid, membership.CreateGroupInput{
		Name: htmlsanitize.Name(req.Name),
		Type: req.Type,
	})
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusCreated, g)
}

type joinRequest struct {
	Code string `json:"code"`
}

// ServeJoin handles POST /groups/join.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	var req joinRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	res, err := h.Engine.JoinGroup(r.Context(), uid, req.Code)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, res)
}

// ServeLeave handles POST /groups/{groupID}/leave.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	gid, err := groupIDParam(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if err := h.Engine.LeaveGroup(r.Context(), uid, gid); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": "left"})
}

type claimRequest struct {
	SlotID string `json:"slot_id"`
}

// ServeClaim handles POST /groups/{groupID}/claim.
func (h *Handler) ServeClaim(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	gid, err := groupIDParam(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	var req claimRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if req.SlotID == "" {
		shared.Error(w, h.Log, apperr.InvalidArgumentf("slot_id is required"))
		return
	}
	g, err := h.Engine.ClaimSlot(r.Context(), uid, gid, req.SlotID)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, g)
}

type mergeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ServeMerge handles POST /groups/{groupID}/members/merge.
func (h *Handler) ServeMerge(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	gid, err := groupIDParam(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	var req mergeRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if req.From == "" || req.To == "" {
		shared.Error(w, h.Log, apperr.InvalidArgumentf("from and to are required"))
		return
	}
	g, err := h.Engine.MergeSlots(r.Context(), uid, gid, req.From, req.To)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, g)
}

type updateMemberRequest struct {
	Name        *string   `json:"name,omitempty"`
	Voice       *string   `json:"voice,omitempty"`
	Role        *string   `json:"role,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

// ServeUpdateMember handles PATCH /groups/{groupID}/members/{memberID}.
func (h *Handler) ServeUpdateMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	gid, err := groupIDParam(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	slotID := chi.URLParam(r, "memberID")
	var req updateMemberRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	in := membership.UpdateMemberInput{
		Voice:       req.Voice,
		Role:        req.Role,
		Permissions: req.Permissions,
	}
	if req.Name != nil {
		clean := htmlsanitize.Name(*req.Name)
		in.Name = &clean
	}
	g, err := h.Engine.UpdateMember(r.Context(), uid, gid, slotID, in)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, g)
}

// ServeSetActive handles POST /groups/{groupID}/activate.
func (h *Handler) ServeSetActive(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.CallerUID(r)
	if !ok {
		shared.Unauthenticated(w)
		return
	}
	gid, err := groupIDParam(r)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if err := h.Engine.SetActiveGroup(r.Context(), uid, gid); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"status": "activated"})
}
