package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/collabify/internal/app/system/auth"
	"github.com/dalemusser/collabify/internal/app/system/idp"
	"github.com/dalemusser/collabify/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// FakeIdP is an in-memory identity provider tenant served over httptest.
// It implements the token, userinfo and Management API endpoints the idp
// client uses, answering list endpoints in the paged object form when
// include_totals=true, as the real tenant does.
type FakeIdP struct {
	URL string

	mu            sync.Mutex
	users         map[string]idp.User
	roles         []idp.Role
	userRoles     map[string][]string // sub -> role ids
	logs          []models.IdPLog
	verifications []string
	fail          map[string]int // sub -> status to answer with
	tokenRequests int
}

// NewFakeIdP starts a fake tenant with "admin", "editor" and "viewer" roles.
func NewFakeIdP(t *testing.T) *FakeIdP {
	t.Helper()

	f := &FakeIdP{
		users: map[string]idp.User{},
		roles: []idp.Role{
			{ID: "rol_admin", Name: "admin"},
			{ID: "rol_editor", Name: "editor"},
			{ID: "rol_viewer", Name: "viewer"},
		},
		userRoles: map[string][]string{},
		fail:      map[string]int{},
	}

	r := chi.NewRouter()
	r.Post("/oauth/token", f.serveToken)
	r.Get("/userinfo", f.serveUserInfo)
	r.Get("/api/v2/roles", f.serveRoles)
	r.Get("/api/v2/logs", f.serveLogs)
	r.Post("/api/v2/jobs/verification-email", f.serveVerification)
	r.Get("/api/v2/users/{sub}", f.serveGetUser)
	r.Patch("/api/v2/users/{sub}", f.servePatchUser)
	r.Get("/api/v2/users/{sub}/roles", f.serveUserRoles)
	r.Post("/api/v2/users/{sub}/roles", f.serveChangeRoles(true))
	r.Delete("/api/v2/users/{sub}/roles", f.serveChangeRoles(false))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	f.URL = srv.URL
	return f
}

// Client returns an idp client configured against the fake tenant.
func (f *FakeIdP) Client() *idp.Client {
	return idp.New(idp.Config{
		BaseURL:         f.URL,
		ClientID:        "web-client",
		ClientSecret:    "web-secret",
		RedirectURL:     "http://localhost/auth/callback",
		M2MClientID:     "m2m-client",
		M2MClientSecret: "m2m-secret",
		RolesClaim:      auth.DefaultRolesClaim,
	}, nil)
}

// AddUser registers a tenant user with the named roles.
func (f *FakeIdP) AddUser(u idp.User, roleNames ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.UserID] = u
	for _, name := range roleNames {
		for _, r := range f.roles {
			if r.Name == name {
				f.userRoles[u.UserID] = append(f.userRoles[u.UserID], r.ID)
			}
		}
	}
}

// AddLogs appends tenant log events (served newest first as given).
func (f *FakeIdP) AddLogs(logs ...models.IdPLog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logs...)
}

// FailUser makes every Management API call about sub answer status.
func (f *FakeIdP) FailUser(sub string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[sub] = status
}

// User returns the stored tenant user.
func (f *FakeIdP) User(sub string) idp.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[sub]
}

// RoleNames returns the names of the roles sub holds.
func (f *FakeIdP) RoleNames(sub string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roleNamesLocked(sub)
}

// Verifications returns the subs a verification email was queued for.
func (f *FakeIdP) Verifications() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.verifications...)
}

// TokenRequests returns how many client-credentials tokens were issued.
func (f *FakeIdP) TokenRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenRequests
}

func (f *FakeIdP) roleNamesLocked(sub string) []string {
	names := []string{}
	for _, id := range f.userRoles[sub] {
		for _, r := range f.roles {
			if r.ID == id {
				names = append(names, r.Name)
			}
		}
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func subParam(r *http.Request) string {
	raw := chi.URLParam(r, "sub")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

// writeError answers in the Management API error shape.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"statusCode": status,
		"error":      http.StatusText(status),
		"message":    message,
	})
}

// writeList answers items as a bare array, or wrapped under key with paging
// totals when the caller asked for include_totals.
func writeList[T any](w http.ResponseWriter, r *http.Request, key string, items []T) {
	if r.URL.Query().Get("include_totals") != "true" {
		writeJSON(w, http.StatusOK, items)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		key:     items,
		"start": 0,
		"limit": len(items),
		"total": len(items),
	})
}

// guard answers the configured failure for sub, if any.
func (f *FakeIdP) guard(w http.ResponseWriter, sub string) bool {
	f.mu.Lock()
	status := f.fail[sub]
	f.mu.Unlock()
	if status != 0 {
		writeError(w, status, "forced failure")
		return true
	}
	return false
}

// serveToken issues "m2m" tokens for client_credentials and "user:<code>"
// tokens for authorization_code, where code is the user's sub.
func (f *FakeIdP) serveToken(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	switch r.PostForm.Get("grant_type") {
	case "client_credentials":
		f.mu.Lock()
		f.tokenRequests++
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "m2m", "token_type": "Bearer", "expires_in": 3600})
	case "authorization_code":
		code := r.PostForm.Get("code")
		f.mu.Lock()
		_, ok := f.users[code]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid_grant"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "user:" + code, "token_type": "Bearer", "expires_in": 3600})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (f *FakeIdP) serveUserInfo(w http.ResponseWriter, r *http.Request) {
	sub := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer user:")
	f.mu.Lock()
	u, ok := f.users[sub]
	roles := f.roleNamesLocked(sub)
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sub":                  u.UserID,
		"name":                 u.Name,
		"nickname":             u.Nickname,
		"email":                u.Email,
		"email_verified":       u.EmailVerified,
		"picture":              u.Picture,
		auth.DefaultRolesClaim: roles,
	})
}

func (f *FakeIdP) mgmtAuthorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer m2m" {
		writeError(w, http.StatusUnauthorized, "Missing authentication")
		return false
	}
	return true
}

func (f *FakeIdP) serveRoles(w http.ResponseWriter, r *http.Request) {
	if !f.mgmtAuthorized(w, r) {
		return
	}
	filter := r.URL.Query().Get("name_filter")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []idp.Role{}
	for _, role := range f.roles {
		if filter == "" || strings.Contains(role.Name, filter) {
			out = append(out, role)
		}
	}
	writeList(w, r, "roles", out)
}

// auth0Log renders l the way the tenant log endpoint does, omitting unset
// fields.
func auth0Log(l models.IdPLog) map[string]any {
	out := map[string]any{
		"_id":    l.LogID,
		"log_id": l.LogID,
		"date":   l.Date.Format(time.RFC3339Nano),
	}
	for k, v := range map[string]string{
		"type":        l.Type,
		"description": l.Description,
		"client_id":   l.ClientID,
		"client_name": l.ClientName,
		"ip":          l.IP,
		"hostname":    l.Hostname,
		"user_id":     l.UserID,
		"user_name":   l.UserName,
	} {
		if v != "" {
			out[k] = v
		}
	}
	if len(l.Details) > 0 {
		out["details"] = l.Details
	}
	return out
}

func (f *FakeIdP) serveLogs(w http.ResponseWriter, r *http.Request) {
	if !f.mgmtAuthorized(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.logs))
	for _, l := range f.logs {
		out = append(out, auth0Log(l))
	}
	writeList(w, r, "logs", out)
}

func (f *FakeIdP) serveVerification(w http.ResponseWriter, r *http.Request) {
	if !f.mgmtAuthorized(w, r) {
		return
	}
	var body struct {
		UserID string `json:"user_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if f.guard(w, body.UserID) {
		return
	}
	f.mu.Lock()
	f.verifications = append(f.verifications, body.UserID)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"status": "pending", "type": "verification_email"})
}

func (f *FakeIdP) serveGetUser(w http.ResponseWriter, r *http.Request) {
	if !f.mgmtAuthorized(w, r) {
		return
	}
	sub := subParam(r)
	if f.guard(w, sub) {
		return
	}
	f.mu.Lock()
	u, ok := f.users[sub]
	f.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "The user does not exist.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (f *FakeIdP) servePatchUser(w http.ResponseWriter, r *http.Request) {
	if !f.mgmtAuthorized(w, r) {
		return
	}
	sub := subParam(r)
	if f.guard(w, sub) {
		return
	}
	var body struct {
		Name     string `json:"name"`
		Nickname string `json:"nickname"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	u, ok := f.users[sub]
	if ok {
		u.Name = body.Name
		u.Nickname = body.Nickname
		f.users[sub] = u
	}
	f.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "The user does not exist.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (f *FakeIdP) serveUserRoles(w http.ResponseWriter, r *http.Request) {
	if !f.mgmtAuthorized(w, r) {
		return
	}
	sub := subParam(r)
	if f.guard(w, sub) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []idp.Role{}
	for _, id := range f.userRoles[sub] {
		for _, role := range f.roles {
			if role.ID == id {
				out = append(out, role)
			}
		}
	}
	writeList(w, r, "roles", out)
}

func (f *FakeIdP) serveChangeRoles(add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !f.mgmtAuthorized(w, r) {
			return
		}
		sub := subParam(r)
		if f.guard(w, sub) {
			return
		}
		var body struct {
			Roles []string `json:"roles"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		defer f.mu.Unlock()
		current := f.userRoles[sub]
		for _, id := range body.Roles {
			if add {
				if !contains(current, id) {
					current = append(current, id)
				}
				continue
			}
			kept := current[:0]
			for _, c := range current {
				if c != id {
					kept = append(kept, c)
				}
			}
			current = kept
		}
		f.userRoles[sub] = current
		w.WriteHeader(http.StatusNoContent)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
