// Package taskstate holds the task state machine and the pure operations on
// a project's embedded task list. Nothing here touches storage; callers save
// the owning project once per mutation.
package taskstate

import (
	"strings"
	"time"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/htmlsanitize"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/google/uuid"
)

// Next returns the status that follows s in the cycle
// todo -> in-progress -> done -> todo. Unknown statuses restart at todo.
func Next(s string) string {
	switch s {
	case models.StatusTodo:
		return models.StatusInProgress
	case models.StatusInProgress:
		return models.StatusDone
	default:
		return models.StatusTodo
	}
}

// CreateInput is the client-supplied part of a new task.
type CreateInput struct {
	Title      string
	AssignedTo *string
	Priority   string
	DueDate    *time.Time
}

// UpdateInput is the editable part of an existing task. Status is not
// editable here; it only moves through Toggle.
type UpdateInput struct {
	Title      string
	AssignedTo *string
	Priority   string
	DueDate    *time.Time
}

func cleanTitle(s string) (string, error) {
	t := strings.TrimSpace(htmlsanitize.PlainText(s))
	if t == "" {
		return "", apierr.Validation("Invalid task title")
	}
	return t, nil
}

func cleanAssignee(a *string) *string {
	if a == nil {
		return nil
	}
	v := strings.TrimSpace(*a)
	if v == "" {
		return nil
	}
	return &v
}

// Create validates in and appends a new task to tasks. Missing priority
// defaults to medium and a missing due date defaults to now.
func Create(tasks []models.Task, in CreateInput, now time.Time) ([]models.Task, models.Task, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return tasks, models.Task{}, err
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return tasks, models.Task{}, apierr.Validation("Invalid priority")
	}
	due := in.DueDate
	if due == nil {
		n := now.UTC()
		due = &n
	}

	t := models.Task{
		ID:         uuid.NewString(),
		Title:      title,
		Status:     models.StatusTodo,
		AssignedTo: cleanAssignee(in.AssignedTo),
		Priority:   priority,
		DueDate:    due,
	}
	return append(tasks, t), t, nil
}

// Update applies in to t. On error t is left untouched.
func Update(t *models.Task, in UpdateInput) error {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return err
	}
	priority := in.Priority
	if priority == "" {
		priority = t.Priority
	}
	if !models.IsValidPriority(priority) {
		return apierr.Validation("Invalid priority")
	}

	t.Title = title
	t.AssignedTo = cleanAssignee(in.AssignedTo)
	t.Priority = priority
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}
	return nil
}

// Toggle advances t to the next status and returns it.
func Toggle(t *models.Task) string {
	t.Status = Next(t.Status)
	return t.Status
}

// Find returns a pointer into tasks for the task with the given id.
func Find(tasks []models.Task, id string) (*models.Task, error) {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, apierr.NotFound("Task not found")
}

// Remove returns tasks without the task with the given id, keeping order.
func Remove(tasks []models.Task, id string) ([]models.Task, error) {
	for i := range tasks {
		if tasks[i].ID == id {
			out := make([]models.Task, 0, len(tasks)-1)
			out = append(out, tasks[:i]...)
			return append(out, tasks[i+1:]...), nil
		}
	}
	return tasks, apierr.NotFound("Task not found")
}
