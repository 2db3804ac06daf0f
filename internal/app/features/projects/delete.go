// internal/app/features/projects/delete.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/collabify/internal/app/policy/projectpolicy"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/projectops"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /projects/{id}/delete                                                  |
| Managers only. Honors If-Match like the other mutations.                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	expect, err := projectops.ExpectedVersion(r, nil)
	if err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := projectops.Load(ctx, h.Projects, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := projectpolicy.CheckManageMembers(&p, u.Sub, "delete the project"); err != nil {
		h.fail(w, err)
		return
	}
	if expect != nil && *expect != p.Version {
		h.fail(w, apierr.Conflict(""))
		return
	}

	n, err := h.Projects.Delete(ctx, p.ProjectID)
	if err != nil {
		h.Log.Error("delete project", zap.String("project_id", p.ProjectID), zap.Error(err))
		h.fail(w, err)
		return
	}
	if n == 0 {
		h.fail(w, apierr.NotFound("Project not found"))
		return
	}

	h.Audit.ProjectDeleted(ctx, r, u.Sub, p.ProjectID)
	apierr.WriteJSON(w, http.StatusOK, successBody{Success: true, Message: "Project deleted"})
}
