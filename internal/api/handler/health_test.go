package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestHealthHandler_Liveness(t *testing.T) {
	e := newEcho()
	c, rec := newContext(e, http.MethodGet, "/health", "", nil)
	if err := NewHealthHandler(nil, zerolog.Nop()).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]Check
		wantCode int
		want     string
	}{
		{"all up", map[string]Check{"mongodb": ok, "redis": ok}, http.StatusOK, "ok"},
		{"redis down", map[string]Check{"mongodb": ok, "redis": down}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			c, rec := newContext(e, http.MethodGet, "/health/ready", "", nil)
			if err := NewHealthHandler(tt.checks, zerolog.Nop()).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.want || len(resp.Dependencies) != len(tt.checks) {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestHealthHandler_ReadinessHidesErrorDetail(t *testing.T) {
	var logs strings.Builder
	checks := map[string]Check{
		"mongodb": func(context.Context) error { return errors.New("dial tcp 10.1.2.3:27017: connection refused") },
	}

	e := newEcho()
	c, rec := newContext(e, http.MethodGet, "/health/ready", "", nil)
	if err := NewHealthHandler(checks, zerolog.New(&logs)).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if body := rec.Body.String(); strings.Contains(body, "10.1.2.3") || strings.Contains(body, "refused") {
		t.Fatalf("response leaks dependency error: %s", body)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dependencies["mongodb"].Status != "unhealthy" {
		t.Fatalf("expected mongodb unhealthy, got %+v", resp)
	}
	if !strings.Contains(logs.String(), "connection refused") || !strings.Contains(logs.String(), `"dependency":"mongodb"`) {
		t.Fatalf("expected the failure to be logged, got %q", logs.String())
	}
}
