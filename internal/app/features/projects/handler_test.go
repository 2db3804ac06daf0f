package projects_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/collabify/internal/app/features/projects"
	"github.com/dalemusser/collabify/internal/app/store/audit"
	"github.com/dalemusser/collabify/internal/app/system/auditlog"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/dalemusser/collabify/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	mgrSub    = "auth0|manager"
	editorSub = "auth0|editor"
	viewerSub = "auth0|viewer"
)

func newTestHandler(t *testing.T) (*projects.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Project: "db", Admin: "db"})
	return projects.NewHandler(db, auditLog, logger), testutil.NewFixtures(t, db)
}

func threeMembers() []models.Member {
	return []models.Member{
		testutil.Member(mgrSub, models.RoleManager),
		testutil.Member(editorSub, models.RoleEditor),
		testutil.Member(viewerSub, models.RoleViewer),
	}
}

func TestHandleCreate_CreatorIsManager(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewJSONRequest("POST", "/projects", map[string]string{
		"name":        "  <b>Launch</b> plan ",
		"description": "Q3 launch",
	})
	req = testutil.WithUser(req, testutil.RegularUser(mgrSub))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var p models.Project
	rec.DecodeJSON(t, &p)
	if p.Name != "Launch plan" {
		t.Errorf("name = %q, want sanitized %q", p.Name, "Launch plan")
	}
	if len(p.ProjectID) != 8 {
		t.Errorf("projectId = %q, want 8 chars", p.ProjectID)
	}
	role, ok := p.Membership.Role(mgrSub)
	if !ok || role != models.RoleManager {
		t.Errorf("creator membership = %q/%v, want manager", role, ok)
	}
	if len(p.Members) != 1 || p.Members[0] != mgrSub {
		t.Errorf("legacy members = %v", p.Members)
	}
	if rec.Header().Get("ETag") != `"1"` {
		t.Errorf("ETag = %q", rec.Header().Get("ETag"))
	}

	n, err := fx.DB().Collection("audit_events").CountDocuments(ctx, bson.M{
		"event_type": audit.EventProjectCreated,
		"project_id": p.ProjectID,
	})
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if n != 1 {
		t.Errorf("audit events = %d, want 1", n)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{"missing name", map[string]string{"description": "x"}, "Name is required"},
		{"markup only", map[string]string{"name": "<script>alert(1)</script>"}, "Name is required"},
		{"unknown field", map[string]any{"name": "A", "owner": "me"}, `Unknown field "owner"`},
		{"malformed", `{"name":`, "Malformed JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(testutil.NewJSONRequest("POST", "/projects", tt.body), testutil.RegularUser(mgrSub))
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, req)

			rec.AssertStatus(t, http.StatusBadRequest)
			if got := rec.ErrorMessage(); got != tt.wantMsg {
				t.Errorf("error = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestHandleCreate_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/projects", map[string]string{"name": "A"}))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeList_OnlyMemberProjects(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := fx.CreateProject(ctx, "Mine", []models.Member{testutil.Member(editorSub, models.RoleEditor)})
	fx.CreateProject(ctx, "Theirs", []models.Member{testutil.Member("auth0|other", models.RoleManager)})

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/projects", testutil.RegularUser(editorSub)))

	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Projects []models.Project `json:"projects"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Projects) != 1 || body.Projects[0].ProjectID != mine.ProjectID {
		t.Errorf("projects = %+v, want only %s", body.Projects, mine.ProjectID)
	}
}

func TestServeProject(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Alpha", threeMembers())

	t.Run("found for any signed-in caller", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest("GET", "/projects/"+p.ProjectID, testutil.RegularUser("auth0|stranger"))
		req = testutil.WithChiURLParam(req, "id", p.ProjectID)
		rec := testutil.NewRecorder()
		h.ServeProject(rec, req)

		rec.AssertStatus(t, http.StatusOK)
		var body struct {
			Project models.Project `json:"project"`
		}
		rec.DecodeJSON(t, &body)
		if body.Project.Name != "Alpha" {
			t.Errorf("name = %q", body.Project.Name)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest("GET", "/projects/nope", testutil.RegularUser(mgrSub))
		req = testutil.WithChiURLParam(req, "id", "nope")
		rec := testutil.NewRecorder()
		h.ServeProject(rec, req)

		rec.AssertStatus(t, http.StatusNotFound)
		if rec.ErrorMessage() != "Project not found" {
			t.Errorf("error = %q", rec.ErrorMessage())
		}
	})
}

func TestHandleDelete(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Alpha", threeMembers())

	req := testutil.NewAuthenticatedRequest("DELETE", "/projects/"+p.ProjectID+"/delete", testutil.RegularUser(editorSub))
	req = testutil.WithChiURLParam(req, "id", p.ProjectID)
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
	if rec.ErrorMessage() != "Only project managers can delete the project" {
		t.Errorf("error = %q", rec.ErrorMessage())
	}

	req = testutil.NewAuthenticatedRequest("DELETE", "/projects/"+p.ProjectID+"/delete", testutil.RegularUser(mgrSub))
	req = testutil.WithChiURLParam(req, "id", p.ProjectID)
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Project deleted")

	n, err := fx.DB().Collection("projects").CountDocuments(ctx, bson.M{"projectId": p.ProjectID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Error("project still stored after delete")
	}
}

func TestHandleJoin_Idempotent(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Alpha", threeMembers())
	joiner := "auth0|joiner"

	for i := 0; i < 2; i++ {
		req := testutil.NewAuthenticatedRequest("POST", "/projects/"+p.ProjectID+"/join", testutil.RegularUser(joiner))
		req = testutil.WithChiURLParam(req, "id", p.ProjectID)
		rec := testutil.NewRecorder()
		h.HandleJoin(rec, req)
		rec.AssertStatus(t, http.StatusOK)
	}

	after := fx.GetProject(ctx, p.ProjectID)
	count := 0
	for _, m := range after.Membership {
		if m.UserSub == joiner {
			count++
			if m.Role != models.RoleEditor {
				t.Errorf("joined role = %q, want editor", m.Role)
			}
		}
	}
	if count != 1 {
		t.Errorf("membership entries for joiner = %d, want 1", count)
	}
	if after.Version != p.Version+1 {
		t.Errorf("version = %d, want one save (%d)", after.Version, p.Version+1)
	}
}

func TestHandleLeave(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Alpha", threeMembers())

	leave := func(sub string) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest("POST", "/projects/"+p.ProjectID+"/leave", testutil.RegularUser(sub))
		req = testutil.WithChiURLParam(req, "id", p.ProjectID)
		rec := testutil.NewRecorder()
		h.HandleLeave(rec, req)
		return rec
	}

	leave(editorSub).AssertStatus(t, http.StatusOK)
	after := fx.GetProject(ctx, p.ProjectID)
	if after.Membership.Has(editorSub) {
		t.Error("editor still has a membership entry after leaving")
	}
	for _, s := range after.Members {
		if s == editorSub {
			t.Error("editor still in legacy members after leaving")
		}
	}

	leave("auth0|stranger").AssertStatus(t, http.StatusOK)

	rec := leave(mgrSub)
	rec.AssertStatus(t, http.StatusBadRequest)
	if rec.ErrorMessage() != "A project must keep at least one manager" {
		t.Errorf("error = %q", rec.ErrorMessage())
	}
}

func TestServeMembers_Public(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Alpha", threeMembers())
	_, err := fx.DB().Collection("projects").UpdateOne(ctx,
		bson.M{"projectId": p.ProjectID},
		bson.M{"$push": bson.M{"members": editorSub}})
	if err != nil {
		t.Fatalf("seed duplicate member: %v", err)
	}

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/projects/"+p.ProjectID+"/members"), "id", p.ProjectID)
	rec := testutil.NewRecorder()
	h.ServeMembers(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Members []string `json:"members"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Members) != 3 {
		t.Errorf("members = %v, want 3 unique", body.Members)
	}
}

func TestHandleRemoveMember(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Alpha", threeMembers())

	remove := func(actor, target string) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest("DELETE", "/projects/"+p.ProjectID+"/members/"+target, testutil.RegularUser(actor))
		req = testutil.WithChiURLParam(req, "id", p.ProjectID)
		req = testutil.WithChiURLParam(req, "memberSub", target)
		rec := testutil.NewRecorder()
		h.HandleRemoveMember(rec, req)
		return rec
	}

	rec := remove(editorSub, viewerSub)
	rec.AssertStatus(t, http.StatusForbidden)

	rec = remove(mgrSub, "auth0%7Cviewer")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Member removed")
	if fx.GetProject(ctx, p.ProjectID).Membership.Has(viewerSub) {
		t.Error("viewer still a member after removal")
	}

	rec = remove(mgrSub, mgrSub)
	rec.AssertStatus(t, http.StatusBadRequest)

	// Removing someone who is not a member succeeds without a write.
	version := fx.GetProject(ctx, p.ProjectID).Version
	rec = remove(mgrSub, "auth0|stranger")
	rec.AssertStatus(t, http.StatusOK)
	if got := fx.GetProject(ctx, p.ProjectID).Version; got != version {
		t.Errorf("version = %d, want unchanged %d", got, version)
	}
	n, err := fx.DB().Collection("audit_events").CountDocuments(ctx, bson.M{
		"event_type": audit.EventMemberRemoved,
		"project_id": p.ProjectID,
	})
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if n != 1 {
		t.Errorf("member_removed events = %d, want 1", n)
	}
}

func TestHandleAssignRole(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Alpha", threeMembers())

	assign := func(actor string, body any) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest("PUT", "/projects/"+p.ProjectID+"/roles", body)
		req = testutil.WithUser(req, testutil.RegularUser(actor))
		req = testutil.WithChiURLParam(req, "id", p.ProjectID)
		rec := testutil.NewRecorder()
		h.HandleAssignRole(rec, req)
		return rec
	}

	rec := assign(editorSub, map[string]string{"targetUserSub": viewerSub, "newRole": models.RoleEditor})
	rec.AssertStatus(t, http.StatusForbidden)

	rec = assign(mgrSub, map[string]string{"targetUserSub": viewerSub, "newRole": "owner"})
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = assign(mgrSub, map[string]any{"targetUserSub": viewerSub, "newRole": models.RoleEditor, "version": p.Version - 1})
	rec.AssertStatus(t, http.StatusConflict)

	rec = assign(mgrSub, map[string]any{"targetUserSub": viewerSub, "newRole": models.RoleEditor, "version": p.Version})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Updated role of user auth0|viewer to editor")

	role, _ := fx.GetProject(ctx, p.ProjectID).Membership.Role(viewerSub)
	if role != models.RoleEditor {
		t.Errorf("role = %q, want editor", role)
	}
}
