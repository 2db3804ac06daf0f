package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/collabify/internal/app/system/validators"
	"github.com/dalemusser/collabify/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"projects", "user_profiles", "idp_logs", "audit_events", "oauth_states"} {
		if !have[want] {
			t.Errorf("collection %q not created", want)
		}
	}
}

func TestProjectsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection("projects")

	valid := bson.M{
		"_id":        primitive.NewObjectID(),
		"projectId":  "abc12345",
		"name":       "Alpha",
		"members":    bson.A{"auth0|u1"},
		"membership": bson.A{bson.M{"userSub": "auth0|u1", "role": "manager"}},
		"tasks": bson.A{bson.M{
			"_id": "t1", "title": "Write", "status": "todo", "priority": "high",
			"assignedTo": nil, "dueDate": time.Now().UTC(),
		}},
		"version": int64(1),
	}
	if _, err := coll.InsertOne(ctx, valid); err != nil {
		t.Fatalf("valid project rejected: %v", err)
	}

	tests := []struct {
		name string
		doc  bson.M
	}{
		{"blank name", bson.M{"projectId": "p2", "name": "   "}},
		{"bad role", bson.M{"projectId": "p3", "name": "B", "membership": bson.A{bson.M{"userSub": "u", "role": "owner"}}}},
		{"bad status", bson.M{"projectId": "p4", "name": "C", "tasks": bson.A{bson.M{"_id": "t", "title": "x", "status": "blocked"}}}},
		{"missing projectId", bson.M{"name": "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := coll.InsertOne(ctx, tt.doc); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}
