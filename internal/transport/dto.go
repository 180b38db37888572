package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
)

type OrderResponse struct {
	models.Order
	Items []models.OrderItem `json:"items"`
}

type CreateOrderResponse struct {
	models.Order
	Items         []models.OrderItem     `json:"items"`
	RejectedItems []service.RejectedItem `json:"rejectedItems"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}

type StatusChangeRequest struct {
	Status models.OrderStatus `json:"status"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewOrderResponse(d *service.OrderDetails) OrderResponse {
	items := d.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return OrderResponse{Order: d.Order, Items: items}
}

func NewCreateOrderResponse(d *service.OrderDetails) CreateOrderResponse {
	res := CreateOrderResponse{Order: d.Order, Items: d.Items, RejectedItems: d.Rejected}
	if res.Items == nil {
		res.Items = []models.OrderItem{}
	}
	if res.RejectedItems == nil {
		res.RejectedItems = []service.RejectedItem{}
	}
	return res
}

// DecodeCreateOrder splits an order creation body into the order fields and the raw
// "items" entries. Items are left undecoded so each one can be accepted or rejected on
// its own. A missing or non-array "items" yields no items.
func DecodeCreateOrder(body []byte) (models.InsertOrder, []json.RawMessage, error) {
	var in models.InsertOrder
	if err := json.Unmarshal(body, &in); err != nil {
		return in, nil, fmt.Errorf("decode order: %w", err)
	}

	var envelope struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return in, nil, fmt.Errorf("decode order: %w", err)
	}

	raw := bytes.TrimSpace(envelope.Items)
	if len(raw) == 0 || raw[0] != '[' {
		return in, nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return in, nil, fmt.Errorf("decode items: %w", err)
	}
	return in, items, nil
}

// ProductFilterFromQuery reads the catalog listing filters. Empty parameters are ignored.
func ProductFilterFromQuery(q url.Values) (service.ProductFilter, error) {
	f := service.ProductFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}

	if !service.ValidSort(f.Sort) {
		return f, fmt.Errorf("unknown sort %q", f.Sort)
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = &d
	}

	if v := q.Get("rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, fmt.Errorf("rating: %w", err)
		}
		f.MinRating = &r
	}

	if v := q.Get("inStock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("inStock: %w", err)
		}
		f.InStockOnly = b
	}
	return f, nil
}
