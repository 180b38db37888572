package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/marketplace/internal/models"
)

// GormStorage persists the marketplace tables through gorm. Ids come from the database
// identity columns.
type GormStorage struct {
	DB  *gorm.DB
	Now func() time.Time
}

var _ Storage = (*GormStorage)(nil)

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

func notFound(err error, what string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, key, ErrNotFound)
	}
	return fmt.Errorf("%s %v: %w", what, key, err)
}

func (r *GormStorage) GetUser(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &u, nil
}

func (r *GormStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err, "user", username)
	}
	return &u, nil
}

func (r *GormStorage) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("username %q: %w", in.Username, ErrConflict)
	}

	u := models.User{Username: in.Username, Password: in.Password, Role: models.DefaultRole}
	if err := r.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username %q: %w", in.Username, ErrConflict)
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormStorage) GetProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormStorage) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

func (r *GormStorage) CreateProduct(ctx context.Context, in models.InsertProduct) (*models.Product, error) {
	p := models.NewProduct(0, in)
	if err := r.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormStorage) UpdateProduct(ctx context.Context, id int, patch models.ProductPatch) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		patch.Apply(&p)
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

func (r *GormStorage) DeleteProduct(ctx context.Context, id int) error {
	return r.DB.WithContext(ctx).Delete(&models.Product{}, id).Error
}

func (r *GormStorage) GetOrders(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormStorage) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

func (r *GormStorage) GetOrderByTrackingCode(ctx context.Context, code string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where("tracking_code = ?", code).Order("id ASC").First(&o).Error; err != nil {
		return nil, notFound(err, "tracking code", code)
	}
	return &o, nil
}

func (r *GormStorage) CreateOrder(ctx context.Context, in models.InsertOrder) (*models.Order, error) {
	o := models.NewOrder(0, in, r.Now())
	if err := r.DB.WithContext(ctx).Create(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormStorage) UpdateOrder(ctx context.Context, id int, patch models.OrderPatch) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
			return err
		}
		if patch.ExpectedStatus != nil && o.Status != *patch.ExpectedStatus {
			return fmt.Errorf("order %d is %s, not %s: %w", id, o.Status, *patch.ExpectedStatus, ErrConflict)
		}
		patch.Apply(&o)
		return tx.Save(&o).Error
	})
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

func (r *GormStorage) GetOrderItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0)
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormStorage) CreateOrderItem(ctx context.Context, in models.InsertOrderItem) (*models.OrderItem, error) {
	it := models.NewOrderItem(0, in)
	if err := r.DB.WithContext(ctx).Create(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}
