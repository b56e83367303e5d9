package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/turbinewatch/internal/orchestrator"
	middleware "github.com/tejusbharadwaj/turbinewatch/internal/web/middlewares"
)

func (h *Handler) GetHealth(c echo.Context) error {
	banner := h.orch.State().Banner()
	status := "ok"
	if banner != "" {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": status,
		"banner": banner,
		"view":   string(h.orch.State().Current()),
	})
}

func (h *Handler) GetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.orch.Summary())
}

func (h *Handler) GetView(c echo.Context) error {
	v, err := orchestrator.ParseView(c.Param("view"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, buildView(h.orch, v))
}

func (h *Handler) Navigate(c echo.Context) error {
	v, err := orchestrator.ParseView(c.Param("view"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondView(c, v, h.orch.Navigate(c.Request().Context(), v))
}

func (h *Handler) Refresh(c echo.Context) error {
	err := h.orch.Refresh(c.Request().Context())
	return h.respondView(c, h.orch.State().Current(), err)
}

func (h *Handler) SetFilters(c echo.Context) error {
	v, err := orchestrator.ParseView(c.Param("view"))
	if err != nil {
		return h.fail(c, err)
	}
	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	filters, err := h.validator.Filters(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.respondView(c, v, h.orch.SetFilters(c.Request().Context(), v, filters))
}

func (h *Handler) GoToPage(c echo.Context) error {
	v, err := orchestrator.ParseView(c.Param("view"))
	if err != nil {
		return h.fail(c, err)
	}
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be an integer")
	}
	return h.respondView(c, v, h.orch.GoToPage(c.Request().Context(), v, page))
}

func (h *Handler) SetPageSize(c echo.Context) error {
	v, err := orchestrator.ParseView(c.Param("view"))
	if err != nil {
		return h.fail(c, err)
	}
	size, err := strconv.Atoi(c.Param("size"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "size must be an integer")
	}
	return h.respondView(c, v, h.orch.SetPageSize(c.Request().Context(), v, size))
}

func (h *Handler) SelectTurbine(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid turbine id")
	}
	detail, err := h.orch.SelectTurbine(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) ClearSelection(c echo.Context) error {
	h.orch.ClearSelection()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ResolveAlert(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid alert id")
	}
	if err := h.orch.ResolveAlert(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetChart(c echo.Context) error {
	name := strings.TrimSuffix(c.Param("name"), ".svg")
	doc, err := h.charts.Chart(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.Blob(http.StatusOK, "image/svg+xml", doc)
}

// respondView answers with v's payload. An unreachable backend still
// returns the payload, banner included, with 503.
func (h *Handler) respondView(c echo.Context, v orchestrator.View, err error) error {
	if errors.Is(err, orchestrator.ErrBackendUnreachable) {
		return c.JSON(http.StatusServiceUnavailable, buildView(h.orch, v))
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, buildView(h.orch, v))
}

func (h *Handler) fail(c echo.Context, err error) error {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"error":      err,
		}).Error("Handler failed")
	}
	return echo.NewHTTPError(code, orchestrator.Notice(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrUnknownView),
		errors.Is(err, orchestrator.ErrAlertNotFound),
		errors.Is(err, orchestrator.ErrTurbineNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrInvalidPeriod),
		errors.Is(err, orchestrator.ErrInvalidPageSize),
		errors.Is(err, orchestrator.ErrPageOutOfRange),
		errors.Is(err, orchestrator.ErrNotPaginated),
		errors.Is(err, orchestrator.ErrMissingAlertID):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrResolveFailed),
		errors.Is(err, orchestrator.ErrBackendUnreachable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
