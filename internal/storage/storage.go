// Package storage defines the marketplace persistence contract and its implementations:
// an in-memory store, a gorm-backed SQL store and a Redis read-through cache decorator.
package storage

import (
	"context"
	"errors"

	"github.com/Skotchmaster/marketplace/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Storage is the CRUD contract every backing store satisfies. Inputs are expected to be
// validated by the caller; implementations only assign ids and defaults.
//
// References between entities (order -> user, item -> order/product) are plain ids and
// are never checked.
type Storage interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error)

	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	CreateProduct(ctx context.Context, in models.InsertProduct) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int, patch models.ProductPatch) (*models.Product, error)
	// DeleteProduct succeeds when the product does not exist. Order items keep
	// pointing at the removed id.
	DeleteProduct(ctx context.Context, id int) error

	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id int) (*models.Order, error)
	GetOrderByTrackingCode(ctx context.Context, code string) (*models.Order, error)
	CreateOrder(ctx context.Context, in models.InsertOrder) (*models.Order, error)
	UpdateOrder(ctx context.Context, id int, patch models.OrderPatch) (*models.Order, error)

	GetOrderItems(ctx context.Context, orderID int) ([]models.OrderItem, error)
	CreateOrderItem(ctx context.Context, in models.InsertOrderItem) (*models.OrderItem, error)
}
