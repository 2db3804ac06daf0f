// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/collabify/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("projects", projectsSchema())
	ensure("user_profiles", userProfilesSchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("idp_logs", nil)
	ensure("audit_events", nil)
	ensure("oauth_states", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func strEnum(vals ...string) bson.A {
	out := bson.A{}
	for _, v := range vals {
		out = append(out, v)
	}
	return out
}

func projectsSchema() bson.M {
	member := bson.M{
		"bsonType": "object",
		"required": bson.A{"userSub", "role"},
		"properties": bson.M{
			"userSub": bson.M{"bsonType": "string", "minLength": 1},
			"role":    bson.M{"enum": strEnum(models.RoleManager, models.RoleEditor, models.RoleViewer)},
		},
	}
	task := bson.M{
		"bsonType": "object",
		"required": bson.A{"_id", "title", "status"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string", "minLength": 1},
			"title":      bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
			"status":     bson.M{"enum": strEnum(models.StatusTodo, models.StatusInProgress, models.StatusDone)},
			"priority":   bson.M{"enum": strEnum(models.PriorityLow, models.PriorityMedium, models.PriorityHigh)},
			"assignedTo": bson.M{"bsonType": bson.A{"string", "null"}},
			"dueDate":    bson.M{"bsonType": bson.A{"date", "null"}},
		},
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"projectId", "name"},
			"properties": bson.M{
				"projectId":   bson.M{"bsonType": "string", "minLength": 1},
				"name":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description": bson.M{"bsonType": "string"},
				"members":     bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"membership":  bson.M{"bsonType": "array", "items": member},
				"tasks":       bson.M{"bsonType": "array", "items": task},
				"version":     bson.M{"bsonType": bson.A{"long", "int"}, "minimum": 0},
			},
		},
	}
}

func userProfilesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"userSub"},
			"properties": bson.M{
				"userSub":        bson.M{"bsonType": "string", "minLength": 1},
				"name":           bson.M{"bsonType": "string"},
				"name_ci":        bson.M{"bsonType": "string"},
				"nickname":       bson.M{"bsonType": "string"},
				"nickname_ci":    bson.M{"bsonType": "string"},
				"email":          bson.M{"bsonType": "string"},
				"email_verified": bson.M{"bsonType": "bool"},
			},
		},
	}
}
