package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/collabify/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestValidateSessionKey(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		key     string
		wantErr bool
	}{
		{"dev allows default", "dev", devSessionKey, false},
		{"prod rejects default", "prod", devSessionKey, true},
		{"prod rejects short", "prod", "short-key", true},
		{"prod accepts strong", "prod", strings.Repeat("s", 32), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSessionKey(tt.env, tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSessionKey(%q) err = %v, wantErr %v", tt.env, err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	err := ValidateConfig(&config.CoreConfig{Env: "dev"}, AppConfig{MongoURI: "http://nope", MongoDatabase: "x"}, testLogger())
	if err == nil {
		t.Fatal("expected error for non-mongo URI")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c,")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %v, want nil", got)
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, &config.CoreConfig{}, AppConfig{}, deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}
}

func TestBuildHandler_Routing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	appCfg := AppConfig{
		SessionKey:        devSessionKey,
		SessionMaxAge:     time.Hour,
		BaseURL:           "http://localhost:8080",
		AIModelTTL:        time.Hour,
		ChatRatePerMinute: 5,
		AuditLogAuth:      "off",
		AuditLogProject:   "off",
		AuditLogAdmin:     "off",
	}

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, appCfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/health", http.StatusOK},
		{"POST", "/health", http.StatusMethodNotAllowed},
		{"GET", "/projects", http.StatusUnauthorized},
		{"GET", "/projects/abc12345/members", http.StatusNotFound},
		{"POST", "/projects/abc12345/tasks", http.StatusUnauthorized},
		{"GET", "/dashboard", http.StatusUnauthorized},
		{"GET", "/audit", http.StatusUnauthorized},
		{"POST", "/chat", http.StatusUnauthorized},
		{"GET", "/no-such-route", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}
