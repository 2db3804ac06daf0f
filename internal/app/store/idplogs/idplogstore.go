// internal/app/store/idplogs/idplogstore.go
package idplogstore

import (
	"context"

	"github.com/dalemusser/collabify/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecentLimit is the number of log events GET /logs returns.
const RecentLimit = 50

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("idp_logs")}
}

// UpsertMany mirrors logs into the collection keyed by log_id. Events that
// are already stored are overwritten. It returns the number of new events.
func (s *Store) UpsertMany(ctx context.Context, logs []models.IdPLog) (int64, error) {
	if len(logs) == 0 {
		return 0, nil
	}
	writes := make([]mongo.WriteModel, 0, len(logs))
	for _, l := range logs {
		if l.LogID == "" {
			continue
		}
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"log_id": l.LogID}).
			SetReplacement(l).
			SetUpsert(true))
	}
	if len(writes) == 0 {
		return 0, nil
	}
	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return res.UpsertedCount, nil
}

// Recent returns the newest limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.IdPLog, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"_id": 0})

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.IdPLog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IndexModels returns the indexes of the idp_logs collection.
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "log_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_idplog_logid"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_idplog_date"),
		},
	}
}

// EnsureIndexes creates indexes for the idp_logs collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, IndexModels())
	return err
}
