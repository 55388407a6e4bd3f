package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	uidKey    = "uid"
	nameKey   = "user_name"
	emailKey  = "user_email"
)

// SessionUser is what the session caches and what gets injected into
// r.Context(). It carries identity only; authorization comes from the
// principal's claims (with a datastore fallback), never from the cookie.
type SessionUser struct {
	UID   string
	Name  string
	Email string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager owns the cookie store and session lifecycle.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager. An empty key
// is replaced with a random one, which invalidates sessions on restart;
// acceptable in dev, never in prod.
func NewSessionManager(key, name, domain string, secure bool, log *zap.Logger) *SessionManager {
	if key == "" {
		key = string(securecookie.GenerateRandomKey(32))
		log.Warn("session key not configured; using a random key, sessions will not survive restart")
	}
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, name: name, log: log}
}

// CurrentUser returns the session user injected by LoadSessionUser.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser injects the user into the request context if a valid
// session cookie is present.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				UID:   getString(sess, uidKey),
				Name:  getString(sess, nameKey),
				Email: getString(sess, emailKey),
			}
			if u.UID != "" {
				r = r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a session user. This is a
// JSON API; there is no login redirect, just a 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthenticated"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn establishes a session for the given user.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAuthKey] = true
	sess.Values[uidKey] = u.UID
	sess.Values[nameKey] = u.Name
	sess.Values[emailKey] = u.Email
	return sess.Save(r, w)
}

// SignOut clears the session.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Options.MaxAge = -1
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	return sess.Save(r, w)
}

func getString(sess *sessions.Session, key string) string {
	s, _ := sess.Values[key].(string)
	return s
}
