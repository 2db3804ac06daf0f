// internal/app/features/users/search.go
package users

import (
	"context"
	"net/http"
	"strings"

	userprofilestore "github.com/dalemusser/collabify/internal/app/store/userprofiles"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type searchResponse struct {
	Users []models.UserProfile `json:"users"`
}

// ServeSearch matches cached profiles by name or nickname.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(query.Get(r, "q"))
	if q == "" {
		h.fail(w, apierr.Validation("Missing search query"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	found, err := h.Profiles.Search(ctx, q, userprofilestore.DefaultSearchLimit)
	if err != nil {
		h.fail(w, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, searchResponse{Users: found})
}
