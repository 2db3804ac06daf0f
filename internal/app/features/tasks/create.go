// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/collabify/internal/app/policy/projectpolicy"
	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/authz"
	"github.com/dalemusser/collabify/internal/app/system/jsonbody"
	"github.com/dalemusser/collabify/internal/app/system/projectops"
	"github.com/dalemusser/collabify/internal/app/system/taskstate"
	"github.com/dalemusser/collabify/internal/app/system/timeouts"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// taskRequest is the body of create and update.
type taskRequest struct {
	Title      string  `json:"title"`
	AssignedTo *string `json:"assignedTo"`
	Priority   string  `json:"priority"`
	DueDate    string  `json:"dueDate"`
	Version    *int64  `json:"version,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /projects/{id}/tasks                                                     |
| Managers and editors add a task; the updated project is returned.             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var req taskRequest
	if err := jsonbody.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
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

	var created models.Task
	p, err := projectops.Mutate(ctx, h.Projects, chi.URLParam(r, "id"), expect, func(p *models.Project) (bool, error) {
		if err := projectpolicy.CheckMutateTasks(p, u.Sub); err != nil {
			return false, err
		}
		tasks, t, err := taskstate.Create(p.Tasks, taskstate.CreateInput{
			Title:      req.Title,
			AssignedTo: req.AssignedTo,
			Priority:   req.Priority,
			DueDate:    due,
		}, h.now())
		if err != nil {
			return false, err
		}
		p.Tasks = tasks
		created = t
		return true, nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Audit.TaskCreated(ctx, r, u.Sub, p.ProjectID, created.ID)
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusCreated, p)
}
