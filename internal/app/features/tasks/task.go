// internal/app/features/tasks/task.go
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

/*─────────────────────────────────────────────────────────────────────────────*
| GET /projects/{id}/tasks/{taskId}                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeTask(w http.ResponseWriter, r *http.Request) {
	u, err := authz.RequireUser(r)
	if err != nil {
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
	if err := projectpolicy.CheckRead(&p, u.Sub); err != nil {
		h.fail(w, err)
		return
	}
	t, err := taskstate.Find(p.Tasks, chi.URLParam(r, "taskId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, t)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /projects/{id}/tasks/{taskId}                                             |
| Edits title, assignee, priority and due date. Status only moves by toggle.    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	taskID := chi.URLParam(r, "taskId")
	p, err := projectops.Mutate(ctx, h.Projects, chi.URLParam(r, "id"), expect, func(p *models.Project) (bool, error) {
		if err := projectpolicy.CheckMutateTasks(p, u.Sub); err != nil {
			return false, err
		}
		t, err := taskstate.Find(p.Tasks, taskID)
		if err != nil {
			return false, err
		}
		if err := taskstate.Update(t, taskstate.UpdateInput{
			Title:      req.Title,
			AssignedTo: req.AssignedTo,
			Priority:   req.Priority,
			DueDate:    due,
		}); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Audit.TaskUpdated(ctx, r, u.Sub, p.ProjectID, taskID)
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, p)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /projects/{id}/tasks/{taskId}                                          |
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

	taskID := chi.URLParam(r, "taskId")
	p, err := projectops.Mutate(ctx, h.Projects, chi.URLParam(r, "id"), expect, func(p *models.Project) (bool, error) {
		if err := projectpolicy.CheckMutateTasks(p, u.Sub); err != nil {
			return false, err
		}
		tasks, err := taskstate.Remove(p.Tasks, taskID)
		if err != nil {
			return false, err
		}
		p.Tasks = tasks
		return true, nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Audit.TaskDeleted(ctx, r, u.Sub, p.ProjectID, taskID)
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, p)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /projects/{id}/tasks/{taskId}/toggle                                    |
| Any member, viewers included, may advance a task's status.                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
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

	taskID := chi.URLParam(r, "taskId")
	var status string
	p, err := projectops.Mutate(ctx, h.Projects, chi.URLParam(r, "id"), expect, func(p *models.Project) (bool, error) {
		if err := projectpolicy.CheckToggle(p, u.Sub); err != nil {
			return false, err
		}
		t, err := taskstate.Find(p.Tasks, taskID)
		if err != nil {
			return false, err
		}
		status = taskstate.Toggle(t)
		return true, nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Audit.TaskToggled(ctx, r, u.Sub, p.ProjectID, taskID, status)
	projectops.SetETag(w, p)
	apierr.WriteJSON(w, http.StatusOK, p)
}
