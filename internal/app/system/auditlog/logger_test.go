package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/collabify/internal/app/store/audit"
	"github.com/dalemusser/collabify/internal/app/system/auditlog"
	"github.com/dalemusser/collabify/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, "auth0|u1")
	logger.Logout(ctx, req, "auth0|u1")
	logger.TaskToggled(ctx, req, "auth0|u1", "p1", "t1", "done")
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:    "off",
		Project: "off",
		Admin:   "off",
	})

	req := httptest.NewRequest("GET", "/", nil)
	logger.LoginSuccess(ctx, req, "auth0|u1")
	logger.ProjectCreated(ctx, req, "auth0|u1", "p1", "Alpha")

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events when config is 'off', got %d", len(events))
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.New(core), auditlog.Config{Project: "db"})

	req := httptest.NewRequest("GET", "/", nil)
	logger.ProjectCreated(ctx, req, "auth0|u1", "p1", "Alpha")

	events, err := store.GetByProject(ctx, "p1", 10)
	if err != nil {
		t.Fatalf("GetByProject failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Details["name"] != "Alpha" {
		t.Errorf("Details[name] = %q, want Alpha", events[0].Details["name"])
	}
	if logs.Len() != 0 {
		t.Errorf("expected no zap entries for 'db', got %d", logs.Len())
	}
}

func TestLogger_Log_ConfigLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.New(core), auditlog.Config{Admin: "log"})

	req := httptest.NewRequest("POST", "/", nil)
	logger.IdPRoleChanged(ctx, req, "auth0|admin", "auth0|u2", "remove", "editor")

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no stored events for 'log', got %d", len(events))
	}

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 zap entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != audit.EventIdPRoleRemoved {
		t.Errorf("event_type = %v, want %s", fields["event_type"], audit.EventIdPRoleRemoved)
	}
	if fields["target_sub"] != "auth0|u2" {
		t.Errorf("target_sub = %v", fields["target_sub"])
	}
}

func TestLogger_Log_ConfigAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: "all"})

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "TestBrowser/1.0")
	logger.LoginSuccess(ctx, req, "auth0|u1")

	events, err := store.Query(ctx, audit.QueryFilter{ActorSub: "auth0|u1"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != audit.EventLoginSuccess || !e.Success {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.IP != "192.168.1.1" {
		t.Errorf("IP = %q, want 192.168.1.1", e.IP)
	}
	if e.UserAgent != "TestBrowser/1.0" {
		t.Errorf("UserAgent = %q", e.UserAgent)
	}
	if logs.Len() != 1 {
		t.Errorf("expected 1 zap entry, got %d", logs.Len())
	}
}

func TestLogger_LoginFailed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "log"})
	logger.LoginFailed(ctx, httptest.NewRequest("GET", "/callback", nil), "invalid state")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
	if entries[0].ContextMap()["failure_reason"] != "invalid state" {
		t.Errorf("failure_reason = %v", entries[0].ContextMap()["failure_reason"])
	}
}

func TestLogger_CategoryFilteredByConfig(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:    "off",
		Project: "db",
		Admin:   "off",
	})

	req := httptest.NewRequest("GET", "/", nil)
	logger.LoginSuccess(ctx, req, "auth0|u1")
	logger.MemberJoined(ctx, req, "auth0|u1", "p1", "editor")
	logger.RoleAssigned(ctx, req, "auth0|u1", "p1", "auth0|u2", "viewer")
	logger.VerificationResent(ctx, req, "auth0|u1", "auth0|u2")

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 project events, got %d", len(events))
	}
	for _, e := range events {
		if e.Category != audit.CategoryProject {
			t.Errorf("unexpected category %q", e.Category)
		}
	}
}
