// internal/app/system/authz/roles.go
package authz

import (
	"net/http"

	"github.com/dalemusser/collabify/internal/app/system/auth"
)

// HasAnyRole reports whether the caller has any of the given global roles.
// Returns false if no caller is present.
func HasAnyRole(r *http.Request, roles ...string) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if u.HasRole(want) {
			return true
		}
	}
	return false
}

// HasRole is a convenience wrapper for a single role.
func HasRole(r *http.Request, role string) bool {
	return HasAnyRole(r, role)
}
