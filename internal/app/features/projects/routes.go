// internal/app/features/projects/routes.go
package projects

import (
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(apierr.MethodNotAllowedHandler)

	// Public: the member list carries only subs.
	r.Get("/{id}/members", h.ServeMembers)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST / CREATE
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		// VIEW
		pr.Get("/{id}", h.ServeProject)

		// DELETE (managers)
		pr.Delete("/{id}/delete", h.HandleDelete)

		// MEMBERSHIP
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Post("/{id}/leave", h.HandleLeave)
		pr.Get("/{id}/membership", h.ServeMembership)
		pr.Delete("/{id}/members/{memberSub}", h.HandleRemoveMember)
		pr.Put("/{id}/roles", h.HandleAssignRole)
	})

	return r
}
