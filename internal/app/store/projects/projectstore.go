// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/collabify/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxIDAttempts bounds projectId regeneration on a duplicate-key error.
const maxIDAttempts = 3

var (
	ErrNotFound  = errors.New("project not found")
	ErrConflict  = errors.New("project was modified concurrently")
	ErrDuplicate = errors.New("could not allocate a unique project id")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// NewProjectID returns a short public id: the first segment of a UUIDv4.
func NewProjectID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Create inserts p with a fresh projectId and version 1. The stored
// project is returned.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Normalize()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		p.ProjectID = NewProjectID()
		_, err := s.c.InsertOne(ctx, p)
		if err == nil {
			return p, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Project{}, err
		}
	}
	return models.Project{}, ErrDuplicate
}

// GetByProjectID loads and normalizes a project.
func (s *Store) GetByProjectID(ctx context.Context, projectID string) (models.Project, error) {
	var p models.Project
	err := s.c.FindOne(ctx, bson.M{"projectId": projectID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}
	p.Normalize()
	return p, nil
}

// ListForMember returns the projects sub belongs to, oldest first. Legacy
// documents that only list sub in members are included.
func (s *Store) ListForMember(ctx context.Context, sub string) ([]models.Project, error) {
	return s.find(ctx, bson.M{"$or": bson.A{
		bson.M{"membership.userSub": sub},
		bson.M{"members": sub},
	}})
}

// ListAll returns every project, oldest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Project, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	projects := []models.Project{}
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Normalize()
	}
	return projects, nil
}

// Save writes p back if its stored version still equals p.Version, then
// bumps p.Version. A lost race returns ErrConflict; a vanished project
// returns ErrNotFound. The legacy members list is rewritten from the
// membership on every save.
func (s *Store) Save(ctx context.Context, p *models.Project) error {
	p.Members = p.Membership.Subs()
	now := time.Now().UTC()

	filter := bson.M{"_id": p.ID, "version": p.Version}
	if p.Version == 0 {
		// Documents written before versioning have no version field.
		filter = bson.M{"_id": p.ID, "$or": bson.A{
			bson.M{"version": 0},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}

	update := bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"members":     p.Members,
		"membership":  p.Membership,
		"tasks":       p.Tasks,
		"version":     p.Version + 1,
		"updated_at":  now,
	}}

	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": p.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	p.Version++
	p.UpdatedAt = now
	return nil
}

// Delete removes a project by its public id.
func (s *Store) Delete(ctx context.Context, projectID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IndexModels returns the indexes of the projects collection.
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "projectId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_project_projectid"),
		},
		{
			Keys:    bson.D{{Key: "membership.userSub", Value: 1}},
			Options: options.Index().SetName("idx_project_membership_sub"),
		},
		{
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("idx_project_members"),
		},
	}
}

// EnsureIndexes creates indexes for the projects collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, IndexModels())
	return err
}
