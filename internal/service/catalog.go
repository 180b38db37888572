package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/shipper"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/internal/util"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"

	CategoryAll           = "all"
	CategoryUncategorized = "Uncategorized"
)

type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id int) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type ShipperSource interface {
	GetProduct(ctx context.Context, id string) (*shipper.Product, error)
}

// ProductFilter narrows and orders the catalog listing. The zero value keeps every
// product in creation order.
type ProductFilter struct {
	Search      string
	Category    string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinRating   *float64
	InStockOnly bool
	Sort        string
}

func ValidSort(s string) bool {
	switch s {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortRating:
		return true
	}
	return false
}

func (f ProductFilter) match(p models.Product) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.Category != "" && f.Category != CategoryAll && p.Category() != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && p.Rating() < *f.MinRating {
		return false
	}
	if f.InStockOnly && !p.InStock {
		return false
	}
	return true
}

type CatalogService struct {
	Store   storage.Storage
	Events  mykafka.Publisher
	Index   ProductIndex
	Shipper ShipperSource
	Metrics *metrics.Metrics
}

func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	all, err := s.Store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if f.match(p) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b models.Product) int { return b.ID - a.ID })
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b models.Product) int { return a.Price.Cmp(b.Price.Decimal) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b models.Product) int { return b.Price.Cmp(a.Price.Decimal) })
	case SortRating:
		slices.SortStableFunc(out, func(a, b models.Product) int {
			ra, rb := a.Rating(), b.Rating()
			switch {
			case ra > rb:
				return -1
			case ra < rb:
				return 1
			}
			return 0
		})
	}
	return out, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	all, err := s.Store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, p := range all {
		c := p.Category()
		if c == "" {
			c = CategoryUncategorized
		}
		seen[c] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	slices.Sort(out)
	return out, nil
}

// SearchProducts uses the search index when one is configured and falls back to a
// substring scan of the catalog otherwise, or when the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (int64, []models.Product, error) {
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to catalog scan", "error", err)
	}

	matched, err := s.ListProducts(ctx, ProductFilter{Search: query})
	if err != nil {
		return 0, nil, err
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return total, []models.Product{}, nil
	}
	end := min(offset+limit, len(matched))
	return total, matched[offset:end], nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.Store.GetProduct(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in models.InsertProduct) (*models.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	p, err := s.Store.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}

	s.productChanged(ctx, "product_created", *p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int, patch models.ProductPatch) (*models.Product, error) {
	p, err := s.Store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.productChanged(ctx, "product_updated", *p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.countProductEvent("product_deleted")
	publish(ctx, s.Events, mykafka.TopicProducts, strconv.Itoa(id), mykafka.NewEvent("product_deleted", map[string]any{"id": id}))
	if s.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, outboundTimeout)
		defer cancel()
		if err := s.Index.DeleteProduct(ictx, id); err != nil {
			logging.FromContext(ctx).Error("search_index_error", "product_id", id, "error", err)
		}
	}
	return nil
}

// CloneFromShipper imports a Shipper catalog entry as a new product.
func (s *CatalogService) CloneFromShipper(ctx context.Context, shipperID string) (*models.Product, error) {
	if s.Shipper == nil {
		return nil, fmt.Errorf("%w: shipper client not configured", ErrUpstream)
	}

	sctx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()

	sp, err := s.Shipper.GetProduct(sctx, shipperID)
	if err != nil {
		if errors.Is(err, shipper.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	in := sp.ToInsert()
	if err := validate(in); err != nil {
		return nil, fmt.Errorf("%w: shipper product %s: %v", ErrUpstream, shipperID, err)
	}

	p, err := s.Store.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}

	s.productChanged(ctx, "product_created", *p)
	return p, nil
}

func (s *CatalogService) productChanged(ctx context.Context, eventType string, p models.Product) {
	s.countProductEvent(eventType)
	publish(ctx, s.Events, mykafka.TopicProducts, strconv.Itoa(p.ID), mykafka.NewEvent(eventType, p))

	if s.Index == nil {
		return
	}
	ictx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()
	if err := s.Index.IndexProduct(ictx, p); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) countProductEvent(eventType string) {
	if s.Metrics != nil {
		s.Metrics.ProductEvents.WithLabelValues(eventType).Inc()
	}
}
