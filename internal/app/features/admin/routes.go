// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /admin.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(apierr.MethodNotAllowedHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireAdmin)

		pr.Post("/roles", h.HandleRoles)
	})

	return r
}
