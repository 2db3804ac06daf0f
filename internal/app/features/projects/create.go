// internal/app/features/projects/create.go
package projects

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/htmlsanitize"
	"github.com/dalemusser/collabify/internal/app/system/jsonbody"
	"github.com/dalemusser/collabify/internal/app/system/projectops"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"go.uber.org/zap"
)

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /projects                                                                |
| Creates a project with the caller as its first manager.                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var req createRequest
	if err := jsonbody.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}
	name := strings.TrimSpace(htmlsanitize.PlainText(req.Name))
	if name == "" {
		h.fail(w, apierr.Validation("Name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Projects.Create(ctx, models.Project{
		Name:        name,
		Description: htmlsanitize.Sanitize(req.Description),
		Membership:  models.Membership{{UserSub: u.Sub, Role: models.RoleManager}},
	})
	if err != nil {
		h.Log.Error("create project", zap.String("sub", u.Sub), zap.Error(err))
		h.fail(w, err)
		return
	}

	h.Audit.ProjectCreated(ctx, r, u.Sub, p.ProjectID, p.Name)
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusCreated, p)
}
