package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, username, password, previous string) (string, *domain.Session, error)
	resolveFn func(ctx context.Context, token string) (*domain.Session, error)
	logoutFn  func(ctx context.Context, token string) error
}

func (s *stubAuthService) Login(ctx context.Context, username, password, previous string) (string, *domain.Session, error) {
	return s.loginFn(ctx, username, password, previous)
}

func (s *stubAuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	return s.resolveFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

type stubUserService struct {
	registerFn func(ctx context.Context, caller *domain.Session, in ports.RegisterInput) (*domain.User, error)
	listFn     func(ctx context.Context, caller *domain.Session, username string) ([]*domain.User, error)
}

func (s *stubUserService) Register(ctx context.Context, caller *domain.Session, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, caller, in)
}

func (s *stubUserService) List(ctx context.Context, caller *domain.Session, username string) ([]*domain.User, error) {
	return s.listFn(ctx, caller, username)
}

type stubClickService struct {
	recordFn func(ctx context.Context, caller *domain.Session, lat, lon float64) (*domain.ClickEvent, error)
	listFn   func(ctx context.Context, caller *domain.Session, username string) ([]*domain.ClickEvent, error)
	reportFn func(ctx context.Context, caller *domain.Session, in ports.ReportInput) ([]*domain.ClickEvent, error)
}

func (s *stubClickService) Record(ctx context.Context, caller *domain.Session, lat, lon float64) (*domain.ClickEvent, error) {
	return s.recordFn(ctx, caller, lat, lon)
}

func (s *stubClickService) List(ctx context.Context, caller *domain.Session, username string) ([]*domain.ClickEvent, error) {
	return s.listFn(ctx, caller, username)
}

func (s *stubClickService) Report(ctx context.Context, caller *domain.Session, in ports.ReportInput) ([]*domain.ClickEvent, error) {
	return s.reportFn(ctx, caller, in)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.JSONSerializer = JSONSerializer{}
	return e
}

// newContext builds a request context. A non-nil session is attached the way
// the session middleware would.
func newContext(e *echo.Echo, method, target, body string, session *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if session != nil {
		c.Set("session", session)
	}
	return c, rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
