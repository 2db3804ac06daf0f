package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/collabify/internal/app/system/auth"
)

// TestUser represents a caller for testing HTTP handlers.
type TestUser struct {
	Sub   string
	Name  string
	Email string
	Roles []string
}

// AdminUser returns a TestUser carrying the global admin role.
func AdminUser() TestUser {
	return TestUser{
		Sub:   "auth0|test-admin",
		Name:  "Test Admin",
		Email: "admin@test.com",
		Roles: []string{auth.RoleAdmin},
	}
}

// RegularUser returns a TestUser without global roles.
func RegularUser(sub string) TestUser {
	return TestUser{
		Sub:   sub,
		Name:  "Test User " + sub,
		Email: sub + "@test.com",
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		Sub:   user.Sub,
		Name:  user.Name,
		Email: user.Email,
		Roles: user.Roles,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request with body as a JSON payload. A string
// body is sent verbatim.
func NewJSONRequest(method, target string, body any) *http.Request {
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertRedirect checks for a redirect to the expected location prefix.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, locationPrefix string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusTemporaryRedirect {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	if loc := r.Header().Get("Location"); !strings.HasPrefix(loc, locationPrefix) {
		t.Errorf("redirect location: got %q, want prefix %q", loc, locationPrefix)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %s", expected, r.Body.String())
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t interface {
	Fatalf(string, ...any)
}, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}

// ErrorMessage returns the "error" field of a JSON error body.
func (r *ResponseRecorder) ErrorMessage() string {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(r.Body.Bytes(), &body)
	return body.Error
}
