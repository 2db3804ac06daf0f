// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auth"
)

// UserCtx returns the caller's sub, name, global roles and a found flag.
// With no signed-in caller it returns "", "", nil, false.
func UserCtx(r *http.Request) (sub, name string, roles []string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", nil, false
	}
	return u.Sub, u.Name, u.Roles, true
}

// Sub returns the caller's sub, or "" when signed out.
func Sub(r *http.Request) string {
	sub, _, _, _ := UserCtx(r)
	return sub
}

// RequireUser returns the caller or an Unauthenticated error.
// Handlers behind RequireSignedIn still call it so the type is non-nil.
func RequireUser(r *http.Request) (*auth.SessionUser, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil, apierr.Unauthenticated("")
	}
	return u, nil
}

// IsAdmin reports whether the caller carries the global admin role.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.IsAdmin()
}

// RequireAdmin returns the caller when they are an admin, Unauthenticated
// when signed out, and Forbidden otherwise.
func RequireAdmin(r *http.Request) (*auth.SessionUser, error) {
	u, err := RequireUser(r)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, apierr.Forbidden("Forbidden: Admins only")
	}
	return u, nil
}
