// internal/app/features/projects/view.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/projectops"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type projectResponse struct {
	Project models.Project `json:"project"`
}

type membersResponse struct {
	Members []string `json:"members"`
}

type membershipResponse struct {
	Membership models.Membership `json:"membership"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /projects/{id}                                                            |
| Any signed-in caller may read a project by id.                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireUser(r); err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := projectops.Load(ctx, h.Projects, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, projectResponse{Project: p})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /projects/{id}/members                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := projectops.Load(ctx, h.Projects, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, membersResponse{Members: p.Membership.Subs()})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /projects/{id}/membership                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMembership(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireUser(r); err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := projectops.Load(ctx, h.Projects, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, membershipResponse{Membership: p.Membership})
}
