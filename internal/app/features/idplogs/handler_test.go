package idplogs_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/collabify/internal/app/features/idplogs"
	idplogstore "github.com/dalemusser/collabify/internal/app/store/idplogs"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/dalemusser/collabify/internal/testutil"
	"go.uber.org/zap"
)

func TestServeList_NewestFifty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := idplogs.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	var logs []models.IdPLog
	for i := 0; i < 60; i++ {
		logs = append(logs, models.IdPLog{
			LogID: fmt.Sprintf("log-%02d", i),
			Date:  base.Add(time.Duration(i) * time.Minute),
			Type:  "s",
		})
	}
	if _, err := idplogstore.New(db).UpsertMany(ctx, logs); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/logs", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Logs []models.IdPLog `json:"logs"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Logs) != idplogstore.RecentLimit {
		t.Fatalf("logs = %d, want %d", len(body.Logs), idplogstore.RecentLimit)
	}
	if body.Logs[0].LogID != "log-59" {
		t.Errorf("first = %q, want newest log-59", body.Logs[0].LogID)
	}
}

func TestServeList_NonAdminForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := idplogs.NewHandler(db, zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/logs", testutil.RegularUser("auth0|bob")))
	rec.AssertStatus(t, http.StatusForbidden)
}
