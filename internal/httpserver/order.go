package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

const maxOrderBody = 1 << 20

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Svc.ListOrders(ctx)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "reason", "cannot read orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	d, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return orderLookupError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderResponse(d))
}

func (h *OrderHTTP) TrackOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.track")

	d, err := h.Svc.Track(ctx, c.Param("code"))
	if err != nil {
		return orderLookupError(l, "track_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderResponse(d))
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxOrderBody))
	if err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "cannot read body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order data")
	}

	in, items, err := transport.DecodeCreateOrder(body)
	if err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order data")
	}

	d, err := h.Svc.CreateOrder(ctx, in, items)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_order_error", "status", 400, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid order data")
		}
		l.Error("create_order_error", "status", 500, "reason", "cannot store order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create order")
	}

	l.Info("create_order_success", "order_id", d.Order.ID, "items", len(d.Items), "rejected_items", len(d.Rejected))
	return c.JSON(http.StatusCreated, transport.NewCreateOrderResponse(d))
}

func (h *OrderHTTP) PatchOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.patch")

	id, err := parseID(c)
	if err != nil {
		l.Warn("patch_order_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	var patch models.OrderPatch
	if err := c.Bind(&patch); err != nil {
		l.Warn("patch_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order data")
	}

	o, err := h.Svc.UpdateOrder(ctx, id, patch)
	if err != nil {
		return orderLookupError(l, "patch_order_error", err)
	}

	l.Info("patch_order_success", "order_id", o.ID)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) ChangeStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.status")

	id, err := parseID(c)
	if err != nil {
		l.Warn("order_status_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	var req transport.StatusChangeRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		l.Warn("order_status_error", "status", 400, "reason", "missing status", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}

	o, err := h.Svc.ChangeStatus(ctx, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("order_status_error", "status", 400, "reason", "unknown status", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
		case errors.Is(err, service.ErrInvalidTransition):
			l.Warn("order_status_error", "status", 409, "reason", "transition not allowed", "error", err)
			return echo.NewHTTPError(http.StatusConflict, "Status change not allowed")
		}
		return orderLookupError(l, "order_status_error", err)
	}

	l.Info("order_status_success", "order_id", o.ID, "order_status", o.Status)
	return c.JSON(http.StatusOK, o)
}

func orderLookupError(l interface {
	Warn(string, ...any)
	Error(string, ...any)
}, event string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		l.Warn(event, "status", 404, "reason", "order not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}
	l.Error(event, "status", 500, "reason", "cannot read order", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch order")
}
