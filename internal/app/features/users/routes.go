// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(apierr.MethodNotAllowedHandler)

	// Public lookups used by the project pages to label members.
	r.Get("/roles", h.ServeRoles)
	r.Get("/info", h.ServeInfo)
	r.Get("/info-batch", h.ServeInfoBatch)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/search", h.ServeSearch)
		pr.Get("/me", h.ServeMe)
		pr.Patch("/profile", h.HandleUpdateProfile)
		pr.Post("/resend-verification", h.HandleResendVerification)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireAdmin)
		ar.Get("/logs", h.ServeLogs)
	})

	return r
}
