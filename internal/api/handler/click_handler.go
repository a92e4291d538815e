package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/geoclick/clicktracker/internal/api/metrics"
	"github.com/geoclick/clicktracker/internal/api/middleware"
	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
)

// Accepted layouts for report bounds, most specific first. An HTML
// datetime-local input submits "2006-01-02T15:04".
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type ClickHandler struct {
	clicks ports.ClickService
}

func NewClickHandler(clicks ports.ClickService) *ClickHandler {
	return &ClickHandler{clicks: clicks}
}

// saveClickRequest deliberately has no owner or timestamp: both are assigned
// server side and any such fields in the body are ignored.
type saveClickRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

// SaveClick records a click for the logged-in user.
//
// @Summary      Record a map click
// @Tags         clicks
// @Accept       json
// @Produce      json
// @Param        body  body      saveClickRequest  true  "Clicked coordinates"
// @Success      200   {object}  domain.ClickEvent
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /save-click [post]
func (h *ClickHandler) SaveClick(c echo.Context) error {
	var req saveClickRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	click, err := h.clicks.Record(c.Request().Context(), middleware.CurrentSession(c), *req.Lat, *req.Lon)
	if err != nil {
		return err
	}

	metrics.ClicksRecordedTotal.Inc()
	return c.JSON(http.StatusOK, click)
}

// List returns the clicks visible to the caller.
//
// @Summary      List clicks
// @Description  Admins see every click, or one user's with ?username=. Other users see only their own.
// @Tags         clicks
// @Produce      json
// @Param        username  query     string  false  "Owner to filter by"
// @Success      200       {array}   domain.ClickEvent
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /clicks [get]
func (h *ClickHandler) List(c echo.Context) error {
	clicks, err := h.clicks.List(c.Request().Context(), middleware.CurrentSession(c), c.QueryParam("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(clicks))
}

// Report returns the caller-visible clicks in an inclusive time window.
//
// @Summary      Click report
// @Tags         clicks
// @Produce      json
// @Param        username  query     string  false  "Owner to filter by"
// @Param        start     query     string  true   "Window start (RFC3339, 2006-01-02T15:04 or 2006-01-02)"
// @Param        end       query     string  true   "Window end (RFC3339, 2006-01-02T15:04 or 2006-01-02)"
// @Success      200       {array}   domain.ClickEvent
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /report [get]
func (h *ClickHandler) Report(c echo.Context) error {
	start, err := parseBound("start", c.QueryParam("start"))
	if err != nil {
		return err
	}
	end, err := parseBound("end", c.QueryParam("end"))
	if err != nil {
		return err
	}

	clicks, err := h.clicks.Report(c.Request().Context(), middleware.CurrentSession(c), ports.ReportInput{
		Username: c.QueryParam("username"),
		Start:    start,
		End:      end,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(clicks))
}

func parseBound(name, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" is required")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be a date or RFC3339 timestamp")
}

func nonNil(clicks []*domain.ClickEvent) []*domain.ClickEvent {
	if clicks == nil {
		return []*domain.ClickEvent{}
	}
	return clicks
}
