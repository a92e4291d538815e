package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"session gone", fmt.Errorf("logout: %w", domain.ErrSessionNotFound), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"duplicate", fmt.Errorf("create: %w", domain.ErrUserExists), http.StatusConflict, "user already exists"},
		{"coordinates", domain.ErrInvalidCoordinates, http.StatusUnprocessableEntity, ""},
		{"input", fmt.Errorf("create user: %w", domain.ErrInvalidInput), http.StatusBadRequest, "invalid input"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "start is required"), http.StatusBadRequest, "start is required"},
		{"persistence", fmt.Errorf("record click: %w: %w", domain.ErrPersistence, errors.New("mongo: no reachable servers")), http.StatusInternalServerError, "internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/clicks", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if tt.msg != "" && body.Error != tt.msg {
				t.Fatalf("expected message %q, got %q", tt.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_DoesNotLeakInternals(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/save-click", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.New(&logs))(fmt.Errorf("%w: dial tcp 10.0.0.7:27017", domain.ErrPersistence), c)

	if strings.Contains(rec.Body.String(), "10.0.0.7") {
		t.Fatalf("response leaked internal detail: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "10.0.0.7") {
		t.Fatalf("expected the cause to be logged, got %s", logs.String())
	}
}
