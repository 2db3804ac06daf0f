package idplogstore_test

import (
	"fmt"
	"testing"
	"time"

	idplogstore "github.com/dalemusser/collabify/internal/app/store/idplogs"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/dalemusser/collabify/internal/testutil"
)

func TestStore_UpsertMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := idplogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	logs := []models.IdPLog{
		{LogID: "a", Date: now, Type: "s"},
		{LogID: "b", Date: now.Add(-time.Minute), Type: "f"},
		{LogID: "", Date: now},
	}

	n, err := store.UpsertMany(ctx, logs)
	if err != nil {
		t.Fatalf("UpsertMany failed: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	// Re-sync overlaps; nothing new.
	n, err = store.UpsertMany(ctx, logs[:1])
	if err != nil {
		t.Fatalf("second UpsertMany failed: %v", err)
	}
	if n != 0 {
		t.Errorf("inserted on resync = %d, want 0", n)
	}

	if n, _ := store.UpsertMany(ctx, nil); n != 0 {
		t.Errorf("empty upsert = %d", n)
	}
}

func TestStore_Recent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := idplogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var logs []models.IdPLog
	for i := 0; i < 60; i++ {
		logs = append(logs, models.IdPLog{
			LogID: fmt.Sprintf("log-%02d", i),
			Date:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	if _, err := store.UpsertMany(ctx, logs); err != nil {
		t.Fatalf("UpsertMany failed: %v", err)
	}

	got, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != idplogstore.RecentLimit {
		t.Fatalf("len = %d, want %d", len(got), idplogstore.RecentLimit)
	}
	if got[0].LogID != "log-59" {
		t.Errorf("newest = %q, want log-59", got[0].LogID)
	}
	if got[len(got)-1].LogID != "log-10" {
		t.Errorf("oldest returned = %q, want log-10", got[len(got)-1].LogID)
	}
}
