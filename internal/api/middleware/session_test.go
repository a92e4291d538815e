package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

const cookieName = "sid"

type stubResolver struct {
	sessions map[string]*domain.Session
	err      error
	calls    int
}

func (r *stubResolver) Resolve(_ context.Context, token string) (*domain.Session, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s, nil
}

func newResolver() *stubResolver {
	return &stubResolver{sessions: map[string]*domain.Session{
		"admin-token": {ID: "1", Username: "admin", IsAdmin: true},
		"alice-token": {ID: "2", Username: "alice"},
	}}
}

func run(t *testing.T, req *http.Request, resolver SessionResolver, guards ...echo.MiddlewareFunc) (*domain.Session, bool, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *domain.Session
	called := false
	h := func(c echo.Context) error {
		called = true
		seen = CurrentSession(c)
		return c.NoContent(http.StatusOK)
	}
	for i := len(guards) - 1; i >= 0; i-- {
		h = guards[i](h)
	}
	h = Session(resolver, cookieName)(h)

	err := h(c)
	return seen, called, err
}

func TestSession_Cookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "alice-token"})

	seen, called, err := run(t, req, newResolver())
	if err != nil || !called {
		t.Fatalf("expected next to run, err=%v", err)
	}
	if seen == nil || seen.Username != "alice" {
		t.Fatalf("expected alice session, got %+v", seen)
	}
}

func TestSession_BearerFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer admin-token")

	seen, _, err := run(t, req, newResolver())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == nil || !seen.IsAdmin {
		t.Fatalf("expected admin session, got %+v", seen)
	}
}

func TestSession_CookieWinsOverHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "alice-token"})
	req.Header.Set(echo.HeaderAuthorization, "Bearer admin-token")

	seen, _, _ := run(t, req, newResolver())
	if seen == nil || seen.Username != "alice" {
		t.Fatalf("expected cookie identity, got %+v", seen)
	}
}

func TestSession_AnonymousPassesThrough(t *testing.T) {
	resolver := newResolver()
	for name, req := range map[string]*http.Request{
		"no token":       httptest.NewRequest(http.MethodGet, "/", nil),
		"unknown token":  withBearer("nope"),
		"malformed auth": withHeader("Token abc"),
	} {
		seen, called, err := run(t, req, resolver)
		if err != nil || !called || seen != nil {
			t.Fatalf("%s: expected anonymous pass-through, seen=%+v called=%v err=%v", name, seen, called, err)
		}
	}
}

func TestSession_StoreFailureSurfaces(t *testing.T) {
	resolver := &stubResolver{err: errors.Join(domain.ErrPersistence, errors.New("redis down"))}

	_, called, err := run(t, withBearer("alice-token"), resolver)
	if called {
		t.Fatalf("next must not run when the session store fails")
	}
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestRequireAuthenticated(t *testing.T) {
	_, called, err := run(t, httptest.NewRequest(http.MethodGet, "/", nil), newResolver(), RequireAuthenticated())
	if called || !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, called=%v err=%v", called, err)
	}

	_, called, err = run(t, withBearer("alice-token"), newResolver(), RequireAuthenticated())
	if !called || err != nil {
		t.Fatalf("expected pass, called=%v err=%v", called, err)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		req     *http.Request
		wantErr error
	}{
		{"anonymous", httptest.NewRequest(http.MethodGet, "/", nil), domain.ErrUnauthorized},
		{"regular user", withBearer("alice-token"), domain.ErrForbidden},
		{"admin", withBearer("admin-token"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, called, err := run(t, tt.req, newResolver(), RequireAdmin())
			if tt.wantErr == nil {
				if err != nil || !called {
					t.Fatalf("expected pass, called=%v err=%v", called, err)
				}
				return
			}
			if called || !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, called=%v err=%v", tt.wantErr, called, err)
			}
		})
	}
}

func withBearer(token string) *http.Request {
	return withHeader("Bearer " + token)
}

func withHeader(value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, value)
	return req
}
