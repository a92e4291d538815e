package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/geoclick/clicktracker/internal/api/metrics"
	"github.com/geoclick/clicktracker/internal/api/middleware"
	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
)

// CookieConfig describes the session cookie set by Login.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth   ports.AuthService
	users  ports.UserService
	cookie CookieConfig
}

func NewAuthHandler(auth ports.AuthService, users ports.UserService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, cookie: cookie}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64,printascii"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	IsAdmin  bool   `json:"isAdmin"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Login authenticates a user and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  statusResponse
// @Failure      401   {object}  statusResponse
// @Failure      429   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, statusResponse{Message: "invalid payload"})
	}

	previous := middleware.TokenFromRequest(c, h.cookie.Name)
	token, session, err := h.auth.Login(c.Request().Context(), req.Username, req.Password, previous)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return c.JSON(http.StatusUnauthorized, statusResponse{Message: "Invalid username or password"})
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	c.SetCookie(h.sessionCookie(token, session.ExpiresAt))
	return c.JSON(http.StatusOK, statusResponse{Success: true})
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Description  Admin only unless REGISTRATION_POLICY=open. Creating an admin always requires an admin session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  statusResponse
// @Failure      400   {object}  statusResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  statusResponse
// @Failure      409   {object}  statusResponse
// @Failure      500   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, statusResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, statusResponse{Message: errorMessage(err)})
	}

	user, err := h.users.Register(c.Request().Context(), middleware.CurrentSession(c), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return c.JSON(http.StatusConflict, statusResponse{Message: "Username already exists"})
		case errors.Is(err, domain.ErrForbidden):
			return c.JSON(http.StatusForbidden, statusResponse{Message: "Only admins can create admin accounts"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, statusResponse{Message: "Username and password are required"})
		}
		return err
	}

	metrics.UsersRegisteredTotal.WithLabelValues(metrics.RoleLabel(user.IsAdmin)).Inc()
	return c.JSON(http.StatusCreated, statusResponse{Success: true})
}

// Logout destroys the caller's session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  statusResponse
// @Failure      500  {object}  map[string]string
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.TokenFromRequest(c, h.cookie.Name)
	err := h.auth.Logout(c.Request().Context(), token)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}

	c.SetCookie(h.sessionCookie("", time.Unix(0, 0)))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, statusResponse{Message: "No active session"})
	}

	metrics.SessionsDestroyedTotal.Inc()
	return c.JSON(http.StatusOK, statusResponse{Success: true})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

func errorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
