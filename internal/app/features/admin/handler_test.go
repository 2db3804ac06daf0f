package admin_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/collabify/internal/app/features/admin"
	"github.com/dalemusser/collabify/internal/app/system/idp"
	"github.com/dalemusser/collabify/internal/testutil"
	"go.uber.org/zap"
)

const bobSub = "auth0|bob"

func newTestHandler(t *testing.T) (*admin.Handler, *testutil.FakeIdP) {
	t.Helper()
	fake := testutil.NewFakeIdP(t)
	fake.AddUser(idp.User{UserID: bobSub, Name: "Bob"}, "viewer")
	return admin.NewHandler(fake.Client(), nil, zap.NewNop()), fake
}

func post(h *admin.Handler, user testutil.TestUser, body any) *testutil.ResponseRecorder {
	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/admin/roles", body), user)
	rec := testutil.NewRecorder()
	h.HandleRoles(rec, req)
	return rec
}

func TestHandleRoles_AddAndRemove(t *testing.T) {
	h, fake := newTestHandler(t)

	rec := post(h, testutil.AdminUser(), map[string]string{"action": "add", "userSub": bobSub, "roleName": "editor"})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Role editor added to user auth0|bob")
	if got := fake.RoleNames(bobSub); len(got) != 2 {
		t.Errorf("roles after add = %v", got)
	}

	rec = post(h, testutil.AdminUser(), map[string]string{"action": "remove", "userSub": bobSub, "roleName": "viewer"})
	rec.AssertStatus(t, http.StatusOK)
	if got := fake.RoleNames(bobSub); len(got) != 1 || got[0] != "editor" {
		t.Errorf("roles after remove = %v", got)
	}
}

func TestHandleRoles_Errors(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name       string
		user       testutil.TestUser
		body       any
		wantStatus int
	}{
		{"not admin", testutil.RegularUser(bobSub), map[string]string{"action": "add", "userSub": bobSub, "roleName": "admin"}, http.StatusForbidden},
		{"bad action", testutil.AdminUser(), map[string]string{"action": "grant", "userSub": bobSub, "roleName": "admin"}, http.StatusBadRequest},
		{"missing sub", testutil.AdminUser(), map[string]string{"action": "add", "roleName": "admin"}, http.StatusBadRequest},
		{"unknown role", testutil.AdminUser(), map[string]string{"action": "add", "userSub": bobSub, "roleName": "wizard"}, http.StatusNotFound},
		{"unknown field", testutil.AdminUser(), map[string]string{"action": "add", "userSub": bobSub, "roleName": "admin", "x": "y"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post(h, tt.user, tt.body).AssertStatus(t, tt.wantStatus)
		})
	}
}
