// Package dashstats computes the dashboard summary over a set of projects.
// Compute is pure; the caller chooses which projects are visible.
package dashstats

import (
	"sort"
	"time"

	"github.com/dalemusser/collabify/internal/domain/models"
)

// TopN is the number of projects reported in TopProjects.
const TopN = 5

// ProjectStats is the per-project task breakdown.
type ProjectStats struct {
	ProjectID       string `json:"projectId"`
	Name            string `json:"name"`
	TotalTasks      int    `json:"totalTasks"`
	DoneTasks       int    `json:"doneTasks"`
	TodoTasks       int    `json:"todoTasks"`
	InProgressTasks int    `json:"inProgressTasks"`
}

// DateCount is the number of tasks due on one calendar date (YYYY-MM-DD).
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Task is a task as the dashboard charts consume it: priority and due date
// are always present.
type Task struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	AssignedTo *string   `json:"assignedTo"`
	Priority   string    `json:"priority"`
	DueDate    time.Time `json:"dueDate"`
}

// Project is a project as the dashboard charts consume it.
type Project struct {
	ID          string            `json:"_id"`
	ProjectID   string            `json:"projectId"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Membership  models.Membership `json:"membership"`
	Tasks       []Task            `json:"tasks"`
}

// Summary is the dashboard response.
type Summary struct {
	UserSub             string         `json:"userSub"`
	IsAdmin             bool           `json:"isAdmin"`
	TotalProjects       int            `json:"totalProjects"`
	TotalTasks          int            `json:"totalTasks"`
	DoneTasks           int            `json:"doneTasks"`
	TodoTasks           int            `json:"todoTasks"`
	InProgressTasks     int            `json:"inProgressTasks"`
	TopProjects         []ProjectStats `json:"topProjects"`
	LargestProjectName  string         `json:"largestProjectName"`
	SmallestProjectName string         `json:"smallestProjectName"`
	ProjectStats        []ProjectStats `json:"projectStats"`
	TasksByPriority     map[string]int `json:"tasksByPriority"`
	TasksByDueDate      []DateCount    `json:"tasksByDueDate"`
	AllProjects         []Project      `json:"allProjects"`
}

// Compute builds the summary for projects. Tasks without a priority count as
// medium and tasks without a due date count as due now.
func Compute(projects []models.Project, userSub string, isAdmin bool, now time.Time) Summary {
	s := Summary{
		UserSub:       userSub,
		IsAdmin:       isAdmin,
		TotalProjects: len(projects),
		TopProjects:   []ProjectStats{},
		ProjectStats:  make([]ProjectStats, 0, len(projects)),
		TasksByPriority: map[string]int{
			models.PriorityLow:    0,
			models.PriorityMedium: 0,
			models.PriorityHigh:   0,
		},
		TasksByDueDate: []DateCount{},
		AllProjects:    make([]Project, 0, len(projects)),
	}

	byDate := make(map[string]int)

	for _, p := range projects {
		ps := ProjectStats{ProjectID: p.ProjectID, Name: p.Name, TotalTasks: len(p.Tasks)}
		out := Project{
			ID:          p.ID.Hex(),
			ProjectID:   p.ProjectID,
			Name:        p.Name,
			Description: p.Description,
			Membership:  p.Membership,
			Tasks:       make([]Task, 0, len(p.Tasks)),
		}
		if out.Membership == nil {
			out.Membership = models.Membership{}
		}

		for _, t := range p.Tasks {
			switch t.Status {
			case models.StatusDone:
				ps.DoneTasks++
			case models.StatusInProgress:
				ps.InProgressTasks++
			case models.StatusTodo:
				ps.TodoTasks++
			}

			priority := t.Priority
			if priority == "" {
				priority = models.PriorityMedium
			}
			due := now
			if t.DueDate != nil {
				due = *t.DueDate
			}
			s.TasksByPriority[priority]++
			byDate[due.UTC().Format("2006-01-02")]++

			out.Tasks = append(out.Tasks, Task{
				ID:         t.ID,
				Title:      t.Title,
				Status:     t.Status,
				AssignedTo: t.AssignedTo,
				Priority:   priority,
				DueDate:    due.UTC(),
			})
		}

		s.TotalTasks += ps.TotalTasks
		s.DoneTasks += ps.DoneTasks
		s.TodoTasks += ps.TodoTasks
		s.InProgressTasks += ps.InProgressTasks
		s.ProjectStats = append(s.ProjectStats, ps)
		s.AllProjects = append(s.AllProjects, out)
	}

	sorted := make([]ProjectStats, len(s.ProjectStats))
	copy(sorted, s.ProjectStats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalTasks > sorted[j].TotalTasks
	})
	if len(sorted) > 0 {
		s.LargestProjectName = sorted[0].Name
		s.SmallestProjectName = sorted[len(sorted)-1].Name
	}
	n := TopN
	if len(sorted) < n {
		n = len(sorted)
	}
	s.TopProjects = append(s.TopProjects, sorted[:n]...)

	for d, c := range byDate {
		s.TasksByDueDate = append(s.TasksByDueDate, DateCount{Date: d, Count: c})
	}
	sort.Slice(s.TasksByDueDate, func(i, j int) bool {
		return s.TasksByDueDate[i].Date < s.TasksByDueDate[j].Date
	})

	return s
}
