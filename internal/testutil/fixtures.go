package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	projectstore "github.com/dalemusser/collabify/internal/app/store/projects"
	userprofilestore "github.com/dalemusser/collabify/internal/app/store/userprofiles"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it again on the same request adds to the existing parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// Member is shorthand for a membership entry.
func Member(sub, role string) models.Member {
	return models.Member{UserSub: sub, Role: role}
}

// CreateProject stores a project with the given membership and tasks.
func (f *Fixtures) CreateProject(ctx context.Context, name string, members []models.Member, tasks ...models.Task) models.Project {
	f.t.Helper()

	p := models.Project{
		Name:       name,
		Membership: models.Membership(members),
		Tasks:      tasks,
	}
	created, err := projectstore.New(f.db).Create(ctx, p)
	if err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return created
}

// Task builds a task with the given id, title and status.
func Task(id, title, status string) models.Task {
	due := time.Now().UTC()
	return models.Task{
		ID:       id,
		Title:    title,
		Status:   status,
		Priority: models.PriorityMedium,
		DueDate:  &due,
	}
}

// CreateUserProfile stores a cached profile.
func (f *Fixtures) CreateUserProfile(ctx context.Context, sub, name, email string) models.UserProfile {
	f.t.Helper()

	p, err := userprofilestore.New(f.db).Upsert(ctx, models.UserProfile{
		UserSub: sub,
		Name:    name,
		Email:   email,
	})
	if err != nil {
		f.t.Fatalf("failed to create test user profile: %v", err)
	}
	return p
}

// GetProject reloads a project from the store.
func (f *Fixtures) GetProject(ctx context.Context, projectID string) models.Project {
	f.t.Helper()

	p, err := projectstore.New(f.db).GetByProjectID(ctx, projectID)
	if err != nil {
		f.t.Fatalf("failed to load test project %s: %v", projectID, err)
	}
	return p
}
