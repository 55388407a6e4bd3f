// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/artom-sites/choirhub/internal/app/features/shared"
	"github.com/artom-sites/choirhub/internal/app/identity"
	principalstore "github.com/artom-sites/choirhub/internal/app/store/principals"
	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/auth"
	"github.com/artom-sites/choirhub/internal/app/system/timeouts"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// stateCookie carries the OAuth CSRF state between the redirect and the
// callback. Short-lived and HttpOnly; the cookie store signs it.
const stateCookie = "choirhub_oauth_state"

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	Principals *principalstore.Store
	SessionMgr *auth.SessionManager
	Syncer     *identity.Syncer
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://choirhub.app/auth/google/callback"
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(users *userstore.Store, principals *principalstore.Store, sm *auth.SessionManager, syncer *identity.Syncer, clientID, clientSecret, baseURL string, log *zap.Logger) *Handler {
	return &Handler{
		Users:        users,
		Principals:   principals,
		SessionMgr:   sm,
		Syncer:       syncer,
		Log:          log,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google: redirects to Google's consent
// screen with a fresh CSRF state.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		shared.Error(w, h.Log, apperr.InvalidArgumentf("google sign-in is not enabled"))
		return
	}

	state, err := generateState()
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("generate OAuth state: %v", err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates state,
// exchanges the code, resolves or creates the principal, and signs in.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		shared.JSON(w, http.StatusUnauthorized, map[string]string{"error": "google sign-in was denied"})
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if state == "" || err != nil || cookie.Value != state {
		h.Log.Warn("invalid or missing OAuth state")
		shared.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid oauth state"})
		return
	}
	// One-shot state.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		shared.JSON(w, http.StatusUnauthorized, map[string]string{"error": "missing oauth code"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		shared.JSON(w, http.StatusUnauthorized, map[string]string{"error": "token exchange failed"})
		return
	}
	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		shared.Error(w, h.Log, apperr.Internalf("fetch Google user info: %v", err))
		return
	}

	u, err := h.resolveAccount(ctx, googleUser)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{UID: u.ID, Name: u.FullName, Email: u.Email}); err != nil {
		shared.Error(w, h.Log, apperr.Internalf("establish session: %v", err))
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{
		"uid": u.ID, "name": u.FullName, "email": u.Email,
	})
}

// resolveAccount maps a Google identity to a local account, linking by
// subject first, then by verified email, and finally creating a fresh
// account when neither matches.
func (h *Handler) resolveAccount(ctx context.Context, gu *googleUserInfo) (*models.User, error) {
	if p, err := h.Principals.GetByGoogleSubject(ctx, gu.ID); err == nil {
		u, err := h.Users.GetByID(ctx, p.UID)
		if err != nil {
			return nil, apperr.Internalf("load user: %v", err)
		}
		return u, nil
	} else if err != principalstore.ErrNotFound {
		return nil, apperr.Internalf("lookup by google subject: %v", err)
	}

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" || !gu.EmailVerified {
		return nil, apperr.PermissionDeniedf("google account has no verified email")
	}

	if p, err := h.Principals.GetByEmail(ctx, email); err == nil {
		// Existing password account with the same verified email; link
		// the Google subject so future sign-ins resolve directly.
		if p.GoogleSubject == "" {
			p.GoogleSubject = gu.ID
			if err := h.Principals.SetGoogleSubject(ctx, p.UID, gu.ID); err != nil {
				h.Log.Warn("failed to link google subject",
					zap.String("uid", p.UID), zap.Error(err))
			}
		}
		u, err := h.Users.GetByID(ctx, p.UID)
		if err != nil {
			return nil, apperr.Internalf("load user: %v", err)
		}
		return u, nil
	} else if err != principalstore.ErrNotFound {
		return nil, apperr.Internalf("lookup by email: %v", err)
	}

	// First sign-in: provision the account.
	uid := uuid.NewString()
	name := strings.TrimSpace(gu.Name)
	if name == "" {
		name = email
	}
	u := &models.User{
		ID:         uid,
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      email,
	}
	if err := h.Users.Insert(ctx, u); err != nil {
		return nil, apperr.Internalf("insert user: %v", err)
	}
	p := &models.Principal{UID: uid, Email: email, GoogleSubject: gu.ID}
	if err := h.Principals.Insert(ctx, p); err != nil {
		return nil, apperr.Internalf("insert principal: %v", err)
	}
	if err := h.Syncer.SyncClaims(ctx, uid); err != nil {
		h.Log.Warn("claims sync failed", zap.String("uid", uid), zap.Error(err))
	}
	h.Log.Info("provisioned account from google sign-in", zap.String("uid", uid))
	return u, nil
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
