package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/middleware"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req models.InsertUser
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user data")
	}

	u, err := h.Svc.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("register_error", "status", 400, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user data")
		case errors.Is(err, storage.ErrConflict):
			l.Warn("register_error", "status", 409, "reason", "username taken", "error", err)
			return echo.NewHTTPError(http.StatusConflict, "Username already exists")
		}
		l.Error("register_error", "status", 500, "reason", "cannot store user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	l.Info("register_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials data")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_error", "status", 401, "reason", "bad credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		l.Error("login_error", "status", 500, "reason", "cannot log in", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to log in")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_user_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.Warn("get_user_error", "status", 404, "reason", "user not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		l.Error("get_user_error", "status", 500, "reason", "cannot read user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user")
	}
	return c.JSON(http.StatusOK, u)
}

// Me returns the user behind the access token, if any.
func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	id, ok := middleware.UserID(c)
	if !ok {
		l.Warn("me_error", "status", 401, "reason", "no access token")
		return echo.NewHTTPError(http.StatusUnauthorized, "Not logged in")
	}

	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.Warn("me_error", "status", 404, "reason", "user not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		l.Error("me_error", "status", 500, "reason", "cannot read user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user")
	}
	return c.JSON(http.StatusOK, u)
}
