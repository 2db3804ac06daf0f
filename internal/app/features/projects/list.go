// internal/app/features/projects/list.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"go.uber.org/zap"
)

type listResponse struct {
	Projects []models.Project `json:"projects"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /projects                                                                 |
| The caller's projects, oldest first.                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projects, err := h.Projects.ListForMember(ctx, u.Sub)
	if err != nil {
		h.Log.Error("list projects", zap.String("sub", u.Sub), zap.Error(err))
		h.fail(w, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, listResponse{Projects: projects})
}
