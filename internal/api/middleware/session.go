package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

const sessionKey = "session"

// SessionResolver maps a token to its live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// Session attaches the caller's session to the request context when the
// request carries a valid token. Anonymous requests pass through untouched;
// rejecting them is the job of RequireAuthenticated and RequireAdmin.
func Session(resolver SessionResolver, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c, cookieName)
			if token == "" {
				return next(c)
			}

			session, err := resolver.Resolve(c.Request().Context(), token)
			switch {
			case err == nil:
				c.Set(sessionKey, session)
			case errors.Is(err, domain.ErrUnauthorized):
			default:
				return err
			}
			return next(c)
		}
	}
}

// TokenFromRequest returns the session token from the cookie, falling back to
// an "Authorization: Bearer" header.
func TokenFromRequest(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentSession returns the session attached by Session, or nil.
func CurrentSession(c echo.Context) *domain.Session {
	session, _ := c.Get(sessionKey).(*domain.Session)
	return session
}

// RequireAuthenticated rejects anonymous requests with domain.ErrUnauthorized.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentSession(c) == nil {
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects anonymous requests with domain.ErrUnauthorized and
// non-admin sessions with domain.ErrForbidden.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := CurrentSession(c)
			if session == nil {
				return domain.ErrUnauthorized
			}
			if !session.IsAdmin {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
