package taskstate_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/taskstate"
	"github.com/dalemusser/collabify/internal/domain/models"
)

func strPtr(s string) *string { return &s }

func TestNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{models.StatusTodo, models.StatusInProgress},
		{models.StatusInProgress, models.StatusDone},
		{models.StatusDone, models.StatusTodo},
		{"", models.StatusTodo},
		{"blocked", models.StatusTodo},
	}
	for _, tt := range tests {
		if got := taskstate.Next(tt.in); got != tt.want {
			t.Errorf("Next(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToggle_ThreeTimesReturnsToStart(t *testing.T) {
	for _, start := range []string{models.StatusTodo, models.StatusInProgress, models.StatusDone} {
		task := models.Task{Status: start}
		taskstate.Toggle(&task)
		taskstate.Toggle(&task)
		taskstate.Toggle(&task)
		if task.Status != start {
			t.Errorf("start %q: after 3 toggles got %q", start, task.Status)
		}
	}
}

func TestCreate_Defaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tasks, task, err := taskstate.Create(nil, taskstate.CreateInput{Title: "  Write docs "}, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len = %d, want 1", len(tasks))
	}
	if task.ID == "" {
		t.Error("expected a task id")
	}
	if task.Title != "Write docs" {
		t.Errorf("Title = %q", task.Title)
	}
	if task.Status != models.StatusTodo {
		t.Errorf("Status = %q", task.Status)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q", task.Priority)
	}
	if task.DueDate == nil || !task.DueDate.Equal(now) {
		t.Errorf("DueDate = %v, want %v", task.DueDate, now)
	}
	if task.AssignedTo != nil {
		t.Errorf("AssignedTo = %v, want nil", *task.AssignedTo)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   taskstate.CreateInput
	}{
		{"empty title", taskstate.CreateInput{Title: ""}},
		{"blank title", taskstate.CreateInput{Title: "   "}},
		{"markup only title", taskstate.CreateInput{Title: "<b></b>"}},
		{"bad priority", taskstate.CreateInput{Title: "ok", Priority: "urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := []models.Task{{ID: "keep"}}
			out, _, err := taskstate.Create(existing, tt.in, time.Now())
			if !errors.Is(err, apierr.Validation("")) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(out) != 1 {
				t.Errorf("tasks changed on error: %v", out)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task := models.Task{ID: "t1", Title: "Old", Status: models.StatusDone, Priority: models.PriorityLow}

	err := taskstate.Update(&task, taskstate.UpdateInput{
		Title:      "New",
		AssignedTo: strPtr("auth0|bob"),
		Priority:   models.PriorityHigh,
		DueDate:    &due,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if task.Title != "New" || task.Priority != models.PriorityHigh {
		t.Errorf("task = %+v", task)
	}
	if task.Status != models.StatusDone {
		t.Errorf("Update must not change status, got %q", task.Status)
	}
	if task.AssignedTo == nil || *task.AssignedTo != "auth0|bob" {
		t.Errorf("AssignedTo = %v", task.AssignedTo)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("DueDate = %v", task.DueDate)
	}
}

func TestUpdate_ErrorLeavesTaskUntouched(t *testing.T) {
	orig := models.Task{ID: "t1", Title: "Old", Status: models.StatusTodo, Priority: models.PriorityLow}

	for _, in := range []taskstate.UpdateInput{
		{Title: ""},
		{Title: "New", Priority: "critical"},
	} {
		task := orig
		if err := taskstate.Update(&task, in); err == nil {
			t.Errorf("Update(%+v) expected error", in)
		}
		if !reflect.DeepEqual(task, orig) {
			t.Errorf("task modified on error: %+v", task)
		}
	}
}

func TestUpdate_EmptyPriorityKeepsCurrent(t *testing.T) {
	task := models.Task{Title: "Old", Priority: models.PriorityHigh}
	if err := taskstate.Update(&task, taskstate.UpdateInput{Title: "New"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if task.Priority != models.PriorityHigh {
		t.Errorf("Priority = %q, want high", task.Priority)
	}
}

func TestRemove(t *testing.T) {
	tasks := []models.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	out, err := taskstate.Remove(tasks, "b")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Errorf("out = %+v", out)
	}
	if len(tasks) != 3 || tasks[1].ID != "b" {
		t.Errorf("input slice modified: %+v", tasks)
	}

	if _, err := taskstate.Remove(out, "zzz"); !errors.Is(err, apierr.NotFound("")) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestFind(t *testing.T) {
	tasks := []models.Task{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}

	got, err := taskstate.Find(tasks, "b")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	got.Title = "changed"
	if tasks[1].Title != "changed" {
		t.Error("Find should return a pointer into the slice")
	}

	if _, err := taskstate.Find(tasks, "x"); !errors.Is(err, apierr.NotFound("")) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
