// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is the project aggregate: one document holding the membership
// map and the embedded task list. It is the unit of consistency; every
// mutation is saved as a whole with a version compare-and-swap.
//
// NOTE:
//   - Membership is the single source of truth for who belongs to a project.
//   - Members is the legacy flat list. It is rewritten from Membership on
//     every save and is never mutated on its own.
type Project struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	ProjectID   string             `bson:"projectId" json:"projectId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`

	Members    []string   `bson:"members" json:"members"`
	Membership Membership `bson:"membership" json:"membership"`
	Tasks      []Task     `bson:"tasks" json:"tasks"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Normalize repairs a project loaded from storage: nil slices become empty,
// duplicate membership entries collapse to the first one, legacy members
// without a membership entry are folded in as editors, and the derived
// Members list is recomputed.
func (p *Project) Normalize() {
	p.Membership = p.Membership.dedupe()
	for _, sub := range p.Members {
		if sub == "" {
			continue
		}
		if _, ok := p.Membership.Role(sub); !ok {
			p.Membership = p.Membership.Set(sub, RoleEditor)
		}
	}
	if p.Membership == nil {
		p.Membership = Membership{}
	}
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	for i := range p.Tasks {
		if p.Tasks[i].Status == "" {
			p.Tasks[i].Status = StatusTodo
		}
		if p.Tasks[i].Priority == "" {
			p.Tasks[i].Priority = PriorityMedium
		}
	}
	p.Members = p.Membership.Subs()
}

// TaskIndex returns the position of the task with the given id, or -1.
func (p *Project) TaskIndex(taskID string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}
