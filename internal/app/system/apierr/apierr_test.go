package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestWrite_StatusByKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", Unauthenticated(""), http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"not found", NotFound("Project not found"), http.StatusNotFound},
		{"validation", Validation("Invalid task title"), http.StatusBadRequest},
		{"conflict", Conflict(""), http.StatusConflict},
		{"method", MethodNotAllowed(), http.StatusMethodNotAllowed},
		{"rate", TooManyRequests(""), http.StatusTooManyRequests},
		{"upstream", Upstream("Failed to fetch roles", errors.New("dial tcp")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", Forbidden("x")), http.StatusForbidden},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, zap.NewNop(), tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestWrite_HidesUpstreamCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, zap.NewNop(), Upstream("Failed to fetch logs", errors.New("secret detail")))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Failed to fetch logs" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("Task not found"))
	if !errors.Is(err, NotFound("")) {
		t.Error("expected errors.Is to match NotFound kind")
	}
	if errors.Is(err, Forbidden("")) {
		t.Error("did not expect a Forbidden match")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf = %v", KindOf(err))
	}
}
