package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/geoclick/clicktracker/internal/api/middleware"
	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// userResponse is the public projection of domain.User. The password hash
// has no field here.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:        u.ID,
			Username:  u.Username,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt,
		})
	}
	return out
}

// List returns the accounts visible to the caller.
//
// @Summary      List users
// @Description  Admins see every account, or one with ?username=. Other users see only themselves.
// @Tags         users
// @Produce      json
// @Param        username  query     string  false  "Username to filter by"
// @Success      200       {array}   userResponse
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), middleware.CurrentSession(c), c.QueryParam("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}
