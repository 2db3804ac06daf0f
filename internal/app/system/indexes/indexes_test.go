package indexes_test

import (
	"testing"

	"github.com/dalemusser/collabify/internal/app/system/indexes"
	"github.com/dalemusser/collabify/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decode index: %v", err)
		}
		names[idx["name"].(string)] = true
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesNamedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"projects":      {"idx_project_projectid", "idx_project_membership_sub"},
		"user_profiles": {"idx_profile_usersub"},
		"idp_logs":      {"idx_idplog_logid"},
		"oauth_states":  {"idx_oauth_state", "idx_oauth_ttl"},
	}
	for coll, names := range want {
		got := indexNames(t, db, coll)
		for _, n := range names {
			if !got[n] {
				t.Errorf("%s: missing index %q (have %v)", coll, n, got)
			}
		}
	}
}

func TestEnsureAll_RenamesMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("projects")
	if _, err := coll.Indexes().DropAll(ctx); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "projectId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("old_name"),
	})
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	got := indexNames(t, db, "projects")
	if got["old_name"] || !got["idx_project_projectid"] {
		t.Errorf("index not renamed: %v", got)
	}
}

func TestEnsureAll_ReportsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("projects")
	if _, err := coll.Indexes().DropAll(ctx); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := coll.InsertOne(ctx, bson.M{"projectId": "same0000"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	if err := indexes.EnsureAll(ctx, db); err == nil {
		t.Error("expected EnsureAll to report duplicate projectId values")
	}
}
