// Package shipper fetches catalog entries from the Shipper supplier API so they can be
// imported as marketplace products.
package shipper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/models"
)

var ErrNotFound = errors.New("shipper product not found")

// Markup is applied to the wholesale price to get the retail price.
var Markup = decimal.RequireFromString("1.3")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type Product struct {
	ID             string
	Title          string
	Description    string
	WholesalePrice decimal.Decimal
	Images         []string
	Raw            models.Metadata
}

type productPayload struct {
	ID             json.RawMessage `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	Images         []string        `json:"images"`
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shipper returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var p productPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	var raw models.Metadata
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := &Product{
		ID:             rawID(p.ID, id),
		Title:          p.Title,
		Description:    p.Description,
		WholesalePrice: p.WholesalePrice,
		Images:         p.Images,
		Raw:            raw,
	}
	return out, nil
}

// rawID accepts both string and numeric ids from the API.
func rawID(raw json.RawMessage, fallback string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ToInsert maps a shipper entry to a new product: retail price is the wholesale price
// times Markup, rounded to cents, and the full payload is kept as metadata.
func (p Product) ToInsert() models.InsertProduct {
	shipperID := p.ID
	wholesale := p.WholesalePrice
	price := p.WholesalePrice.Mul(Markup).Round(2)
	return models.InsertProduct{
		ShipperID:      &shipperID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          &price,
		WholesalePrice: &wholesale,
		Images:         p.Images,
		Metadata:       p.Raw,
	}
}
