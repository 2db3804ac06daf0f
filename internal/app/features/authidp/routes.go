// internal/app/features/authidp/routes.go
package authidp

import (
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(apierr.MethodNotAllowedHandler)
	r.Get("/login", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	r.Get("/logout", h.ServeLogout)
	return r
}
