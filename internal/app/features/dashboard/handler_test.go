package dashboard_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/collabify/internal/app/features/dashboard"
	"github.com/dalemusser/collabify/internal/app/system/dashstats"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/dalemusser/collabify/internal/testutil"
	"go.uber.org/zap"
)

func seed(t *testing.T) (*dashboard.Handler, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := "auth0|member"
	fx.CreateProject(ctx, "Mine", []models.Member{testutil.Member(member, models.RoleEditor)},
		testutil.Task("a", "A", models.StatusDone),
		testutil.Task("b", "B", models.StatusTodo))
	fx.CreateProject(ctx, "Other", []models.Member{testutil.Member("auth0|other", models.RoleManager)},
		testutil.Task("c", "C", models.StatusInProgress))

	return dashboard.NewHandler(db, zap.NewNop()), member
}

func TestServeDashboard_MemberSeesOwnProjects(t *testing.T) {
	h, member := seed(t)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.RegularUser(member)))
	rec.AssertStatus(t, http.StatusOK)

	var s dashstats.Summary
	rec.DecodeJSON(t, &s)
	if s.IsAdmin || s.UserSub != member {
		t.Errorf("identity = %q/%v", s.UserSub, s.IsAdmin)
	}
	if s.TotalProjects != 1 || s.TotalTasks != 2 || s.DoneTasks != 1 || s.TodoTasks != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.LargestProjectName != "Mine" || s.SmallestProjectName != "Mine" {
		t.Errorf("largest/smallest = %q/%q", s.LargestProjectName, s.SmallestProjectName)
	}
}

func TestServeDashboard_AdminSeesAll(t *testing.T) {
	h, _ := seed(t)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var s dashstats.Summary
	rec.DecodeJSON(t, &s)
	if !s.IsAdmin || s.TotalProjects != 2 || s.TotalTasks != 3 || s.InProgressTasks != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.LargestProjectName != "Mine" || s.SmallestProjectName != "Other" {
		t.Errorf("largest/smallest = %q/%q", s.LargestProjectName, s.SmallestProjectName)
	}
	if s.TasksByPriority[models.PriorityMedium] != 3 {
		t.Errorf("tasksByPriority = %v", s.TasksByPriority)
	}
}

func TestServeDashboard_Unauthenticated(t *testing.T) {
	h, _ := seed(t)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewRequest("GET", "/dashboard"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
