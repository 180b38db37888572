package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/middleware"
)

type Deps struct {
	Catalog   *CatalogHTTP
	Orders    *OrderHTTP
	Users     *UserHTTP
	Dashboard *DashboardHTTP
	Metrics   *metrics.Metrics
	// JWTSecret lets the identity middleware read access tokens. Nothing is enforced.
	JWTSecret []byte
	// Ready reports whether backing services answer; nil means always ready.
	Ready func(ctx context.Context) error
}

// New builds the echo instance with the middleware chain and every route.
func New(logger *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger))
	if d.Metrics != nil {
		e.Use(middleware.Metrics(d.Metrics))
	}
	e.Use(echomw.CORS())
	if len(d.JWTSecret) > 0 {
		e.Use(middleware.Identity(d.JWTSecret))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/categories", d.Catalog.Categories)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct)
	products.POST("/clone/:shipperId", d.Catalog.CloneProduct)
	products.PATCH("/:id", d.Catalog.PatchProduct)
	products.DELETE("/:id", d.Catalog.DeleteProduct)

	orders := api.Group("/orders")
	orders.GET("", d.Orders.ListOrders)
	orders.GET("/track/:code", d.Orders.TrackOrder)
	orders.GET("/:id", d.Orders.GetOrder)
	orders.POST("", d.Orders.CreateOrder)
	orders.PATCH("/:id", d.Orders.PatchOrder)
	orders.POST("/:id/status", d.Orders.ChangeStatus)

	api.GET("/admin/stats", d.Dashboard.Stats)

	users := api.Group("/users")
	users.POST("", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.GET("/me", d.Users.Me)
	users.GET("/:id", d.Users.GetUser)
}

func parseID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}
