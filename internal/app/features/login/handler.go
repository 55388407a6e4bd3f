// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UID / uid: the identity-principal id (string _id of the users and
//     principals collections), issued at signup
//   - SlotID: a roster slot id, either a UID or "manual_<uuid>"

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/artom-sites/choirhub/internal/app/features/shared"
	"github.com/artom-sites/choirhub/internal/app/identity"
	principalstore "github.com/artom-sites/choirhub/internal/app/store/principals"
	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/auth"
	"github.com/artom-sites/choirhub/internal/app/system/htmlsanitize"
	"github.com/artom-sites/choirhub/internal/app/system/timeouts"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// Handler serves password-based login and signup.
type Handler struct {
	Users      *userstore.Store
	Principals *principalstore.Store
	SessionMgr *auth.SessionManager
	Syncer     *identity.Syncer
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, principals *principalstore.Store, sm *auth.SessionManager, syncer *identity.Syncer, log *zap.Logger) *Handler {
	return &Handler{Users: users, Principals: principals, SessionMgr: sm, Syncer: syncer, Log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ServeLogin handles POST /auth/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		shared.Error(w, h.Log, apperr.InvalidArgumentf("email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Principals.GetByEmail(ctx, email)
	if err == principalstore.ErrNotFound {
		h.failLogin(w, email, "unknown email")
		return
	}
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("load principal: %v", err))
		return
	}
	if p.PasswordHash == "" {
		h.failLogin(w, email, "principal has no password auth")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)) != nil {
		h.failLogin(w, email, "bad password")
		return
	}

	u, err := h.Users.GetByID(ctx, p.UID)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("load user: %v", err))
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{UID: u.ID, Name: u.FullName, Email: u.Email}); err != nil {
		shared.Error(w, h.Log, apperr.Internalf("establish session: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, sessionResponse{UID: u.ID, Name: u.FullName, Email: u.Email})
}

// failLogin responds with a uniform 401 so the reason (unknown email vs
// bad password) does not leak; the detail goes to the log only.
func (h *Handler) failLogin(w http.ResponseWriter, email, reason string) {
	h.Log.Info("login rejected", zap.String("email", email), zap.String("reason", reason))
	shared.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeSignup handles POST /auth/signup: creates a principal with a
// bcrypt password hash and the matching user document, then signs the
// new account in.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	name := htmlsanitize.Name(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case name == "":
		shared.Error(w, h.Log, apperr.InvalidArgumentf("full_name is required"))
		return
	case email == "" || !strings.Contains(email, "@"):
		shared.Error(w, h.Log, apperr.InvalidArgumentf("a valid email is required"))
		return
	case len(req.Password) < 8:
		shared.Error(w, h.Log, apperr.InvalidArgumentf("password must be at least 8 characters"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Principals.GetByEmail(ctx, email); err == nil {
		shared.JSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
		return
	} else if err != principalstore.ErrNotFound {
		shared.Error(w, h.Log, apperr.Internalf("check email: %v", err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("hash password: %v", err))
		return
	}

	uid := uuid.NewString()
	u := &models.User{
		ID:         uid,
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      email,
	}
	if err := h.Users.Insert(ctx, u); err != nil {
		shared.Error(w, h.Log, apperr.Internalf("insert user: %v", err))
		return
	}
	p := &models.Principal{UID: uid, Email: email, PasswordHash: string(hash)}
	if err := h.Principals.Insert(ctx, p); err != nil {
		shared.Error(w, h.Log, apperr.Internalf("insert principal: %v", err))
		return
	}
	if err := h.Syncer.SyncClaims(ctx, uid); err != nil {
		h.Log.Warn("claims sync failed", zap.String("uid", uid), zap.Error(err))
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{UID: uid, Name: name, Email: email}); err != nil {
		shared.Error(w, h.Log, apperr.Internalf("establish session: %v", err))
		return
	}
	shared.JSON(w, http.StatusCreated, sessionResponse{UID: uid, Name: name, Email: email})
}
