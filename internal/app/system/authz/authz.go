// Package authz extracts the authenticated caller from a request.
// Role and permission decisions live in the identity authorizer, which
// reads the claims cache with a datastore fallback; this package only
// answers "who is calling".
package authz

import (
	"net/http"

	"github.com/artom-sites/choirhub/internal/app/system/auth"
)

// CallerUID returns the authenticated caller's UID, or ok=false when the
// request carries no identity.
func CallerUID(r *http.Request) (uid string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.UID == "" {
		return "", false
	}
	return u.UID, true
}
