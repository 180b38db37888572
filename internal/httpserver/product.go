package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/shipper"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	filter, err := transport.ProductFilterFromQuery(c.QueryParams())
	if err != nil {
		l.Warn("list_products_error", "status", 400, "reason", "bad filter", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid filter")
	}

	items, err := h.Svc.ListProducts(ctx, filter)
	if err != nil {
		l.Error("list_products_error", "status", 500, "reason", "cannot read products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.categories")

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		l.Error("categories_error", "status", 500, "reason", "cannot read products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	if q == "" {
		l.Warn("search_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "Missing search query")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, err := h.Svc.SearchProducts(ctx, q, page, size)
	if err != nil {
		l.Error("search_error", "status", 500, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed")
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Products: items})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.Warn("get_product_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("get_product_error", "status", 500, "reason", "cannot read product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch product")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req models.InsertProduct
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product data")
	}

	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_product_error", "status", 400, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid product data")
		}
		l.Error("create_product_error", "status", 500, "reason", "cannot store product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create product")
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) CloneProduct(c echo.Context) error {
	ctx := c.Request().Context()
	shipperID := c.Param("shipperId")
	l := logging.FromContext(ctx).With("handler", "product.clone", "shipper_id", shipperID)

	p, err := h.Svc.CloneFromShipper(ctx, shipperID)
	if err != nil {
		switch {
		case errors.Is(err, shipper.ErrNotFound):
			l.Warn("clone_product_error", "status", 404, "reason", "unknown shipper product", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Shipper product not found")
		case errors.Is(err, service.ErrUpstream):
			l.Error("clone_product_error", "status", 502, "reason", "shipper unavailable", "error", err)
			return echo.NewHTTPError(http.StatusBadGateway, "Failed to clone product")
		}
		l.Error("clone_product_error", "status", 500, "reason", "cannot store product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clone product")
	}

	l.Info("clone_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := parseID(c)
	if err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	var patch models.ProductPatch
	if err := c.Bind(&patch); err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product data")
	}

	p, err := h.Svc.UpdateProduct(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.Warn("patch_product_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("patch_product_error", "status", 500, "reason", "cannot update product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update product")
	}

	l.Info("patch_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c)
	if err != nil {
		l.Warn("delete_product_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		l.Error("delete_product_error", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete product")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
