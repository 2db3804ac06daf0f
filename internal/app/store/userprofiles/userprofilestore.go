// internal/app/store/userprofiles/userprofilestore.go
package userprofilestore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 20

var ErrNotFound = errors.New("user profile not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_profiles")}
}

// Upsert writes the profile for p.UserSub, creating it when absent.
func (s *Store) Upsert(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	p.NameCI = text.Fold(p.Name)
	p.NicknameCI = text.Fold(p.Nickname)
	p.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"name":           p.Name,
		"name_ci":        p.NameCI,
		"nickname":       p.Nickname,
		"nickname_ci":    p.NicknameCI,
		"email":          p.Email,
		"email_verified": p.EmailVerified,
		"picture":        p.Picture,
		"updated_at":     p.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.UserProfile
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"userSub": p.UserSub},
		bson.M{"$set": set, "$setOnInsert": bson.M{"userSub": p.UserSub}},
		opts,
	).Decode(&out)
	if err != nil {
		return models.UserProfile{}, err
	}
	return out, nil
}

// UpdateNames changes only the name and nickname of an existing profile.
func (s *Store) UpdateNames(ctx context.Context, sub, name, nickname string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"userSub": sub}, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"nickname":    nickname,
		"nickname_ci": text.Fold(nickname),
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBySub retrieves the cached profile for sub.
func (s *Store) GetBySub(ctx context.Context, sub string) (models.UserProfile, error) {
	var p models.UserProfile
	err := s.c.FindOne(ctx, bson.M{"userSub": sub}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.UserProfile{}, ErrNotFound
		}
		return models.UserProfile{}, err
	}
	return p, nil
}

// Search returns profiles whose name or nickname contains q, ignoring case
// and diacritics. q is matched literally.
func (s *Store) Search(ctx context.Context, q string, limit int64) ([]models.UserProfile, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.UserProfile{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	pattern := regexp.QuoteMeta(text.Fold(q))
	filter := bson.M{"$or": bson.A{
		bson.M{"name_ci": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"nickname_ci": bson.M{"$regex": pattern, "$options": "i"}},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "userSub", Value: 1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.UserProfile{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IndexModels returns the indexes of the user_profiles collection.
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userSub", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_profile_usersub"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_profile_name_ci"),
		},
		{
			Keys:    bson.D{{Key: "nickname_ci", Value: 1}},
			Options: options.Index().SetName("idx_profile_nickname_ci"),
		},
	}
}

// EnsureIndexes creates indexes for the user_profiles collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, IndexModels())
	return err
}
