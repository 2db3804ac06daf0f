// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /projects/{id}/tasks.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(apierr.MethodNotAllowedHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/{taskId}", h.ServeTask)
		pr.Put("/{taskId}", h.HandleUpdate)
		pr.Delete("/{taskId}", h.HandleDelete)
		pr.Patch("/{taskId}/toggle", h.HandleToggle)
	})

	return r
}
