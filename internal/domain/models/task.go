// internal/domain/models/task.go
package models

import "time"

// Task statuses, in cycle order.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// IsValidPriority reports whether p is low, medium or high.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is embedded in exactly one Project and has no lifecycle of its own.
// AssignedTo is a weak reference to a userSub; it is not checked against
// the project's membership.
type Task struct {
	ID         string     `bson:"_id" json:"_id"`
	Title      string     `bson:"title" json:"title"`
	Status     string     `bson:"status" json:"status"`
	AssignedTo *string    `bson:"assignedTo" json:"assignedTo"`
	Priority   string     `bson:"priority" json:"priority"`
	DueDate    *time.Time `bson:"dueDate,omitempty" json:"dueDate"`
}
