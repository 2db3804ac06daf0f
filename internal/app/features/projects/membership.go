// internal/app/features/projects/membership.go
package projects

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/collabify/internal/app/policy/projectpolicy"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/jsonbody"
	"github.com/dalemusser/collabify/internal/app/system/projectops"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /projects/{id}/join                                                      |
| Adds the caller as an editor. Joining twice is a no-op.                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
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

	var joined bool
	p, err := projectops.Mutate(ctx, h.Projects, chi.URLParam(r, "id"), expect, func(p *models.Project) (bool, error) {
		joined = projectpolicy.Join(p, u.Sub)
		return joined, nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	if joined {
		h.Audit.MemberJoined(ctx, r, u.Sub, p.ProjectID, projectpolicy.DefaultJoinRole)
	}
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, successBody{Success: true})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /projects/{id}/leave                                                     |
| Removes the caller's membership entry. A non-member leaving is a no-op.       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
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

	var left bool
	p, err := projectops.Mutate(ctx, h.Projects, chi.URLParam(r, "id"), expect, func(p *models.Project) (bool, error) {
		removed, err := projectpolicy.Leave(p, u.Sub)
		left = removed
		return removed, err
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	if left {
		h.Audit.MemberLeft(ctx, r, u.Sub, p.ProjectID)
	}
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, successBody{Success: true})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /projects/{id}/members/{memberSub}                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	target := urlParam(r, "memberSub")
	if target == "" {
		h.fail(w, apierr.Validation("Missing member sub"))
		return
	}
	expect, err := projectops.ExpectedVersion(r, nil)
	if err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var removed bool
	p, err := projectops.Mutate(ctx, h.Projects, chi.URLParam(r, "id"), expect, func(p *models.Project) (bool, error) {
		var err error
		removed, err = projectpolicy.RemoveMember(p, u.Sub, target)
		return removed, err
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	if removed {
		h.Audit.MemberRemoved(ctx, r, u.Sub, p.ProjectID, target)
	}
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, successBody{Success: true, Message: "Member removed"})
}

type assignRoleRequest struct {
	TargetUserSub string `json:"targetUserSub"`
	NewRole       string `json:"newRole"`
	Version       *int64 `json:"version,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /projects/{id}/roles                                                      |
| Body: {"targetUserSub": "...", "newRole": "manager|editor|viewer"}            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var req assignRoleRequest
	if err := jsonbody.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}
	expect, err := projectops.ExpectedVersion(r, req.Version)
	if err != nil {
		h.fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := projectops.Mutate(ctx, h.Projects, chi.URLParam(r, "id"), expect, func(p *models.Project) (bool, error) {
		if err := projectpolicy.AssignRole(p, u.Sub, req.TargetUserSub, req.NewRole); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Audit.RoleAssigned(ctx, r, u.Sub, p.ProjectID, req.TargetUserSub, req.NewRole)
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, successBody{
		Success: true,
		Message: fmt.Sprintf("Updated role of user %s to %s", req.TargetUserSub, req.NewRole),
	})
}
