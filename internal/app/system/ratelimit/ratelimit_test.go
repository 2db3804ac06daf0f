package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l := PerMinute(3)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("u") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("u") {
		t.Error("4th request within a minute should be blocked")
	}
	if !l.Allow("other") {
		t.Error("keys must be independent")
	}

	// One token refills every 20s.
	now = now.Add(21 * time.Second)
	if !l.Allow("u") {
		t.Error("expected a refilled token")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := PerMinute(1)
	l.Allow("u")
	if l.Allow("u") {
		t.Fatal("expected block")
	}
	l.Reset("u")
	if !l.Allow("u") {
		t.Error("expected allow after reset")
	}
}

func TestLimiter_SweepsIdleKeys(t *testing.T) {
	l := PerMinute(5)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	if l.Len() != 2 {
		t.Fatalf("Len = %d", l.Len())
	}

	now = now.Add(11 * time.Minute)
	l.Allow("c")
	if l.Len() != 1 {
		t.Errorf("Len after sweep = %d, want 1", l.Len())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"xff first entry", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"x-real-ip", "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"remote with port", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
