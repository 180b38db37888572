package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/service"
)

type DashboardHTTP struct {
	Svc *service.DashboardService
}

func (h *DashboardHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	st, err := h.Svc.Stats(ctx)
	if err != nil {
		l.Error("stats_error", "status", 500, "reason", "cannot compute stats", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch stats")
	}
	return c.JSON(http.StatusOK, st)
}
