// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// DefaultReturn is where sign-in and sign-out land when no return URL is
// supplied.
const DefaultReturn = "/dashboard"

// ReturnURL extracts the "return" query parameter and validates it with
// Sanitize.
func ReturnURL(r *http.Request) string {
	return Sanitize(query.Get(r, "return"))
}

// Sanitize validates that ret is a local path (not an open redirect).
// Paths under /auth are rejected to avoid login loops.
func Sanitize(ret string) string {
	safe := urlutil.SafeReturn(ret, "", DefaultReturn)
	if strings.HasPrefix(safe, "/auth") {
		return DefaultReturn
	}
	return safe
}
