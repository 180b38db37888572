package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/marketplace/internal/models"
)

// ProductIndex keeps one document per product, keyed by the product id.
type ProductIndex struct {
	client *elasticsearch.Client
	name   string
}

func NewProductIndex(client *elasticsearch.Client, name string) *ProductIndex {
	return &ProductIndex{client: client, name: name}
}

func (ix *ProductIndex) IndexProduct(ctx context.Context, p models.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("encode product %d: %w", p.ID, err)
	}

	res, err := ix.client.Index(
		ix.name,
		&buf,
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(strconv.Itoa(p.ID)),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("index product", res.Status(), res.Body)
	}
	return nil
}

// DeleteProduct removes the document; a missing document is not an error.
func (ix *ProductIndex) DeleteProduct(ctx context.Context, id int) error {
	res, err := ix.client.Delete(ix.name, strconv.Itoa(id), ix.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete product", res.Status(), res.Body)
	}
	return nil
}

// Search runs a fuzzy multi_match over title and description, title weighted double.
func (ix *ProductIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.name),
		ix.client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func responseError(op, status string, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 4096))
	return fmt.Errorf("%s: elasticsearch returned %s: %s", op, status, bytes.TrimSpace(msg))
}
