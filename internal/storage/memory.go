package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type counters struct {
	users, products, orders, orderItems int
}

// MemStorage keeps every table in a map keyed by id. Counters start at 1 and are never
// rewound, so ids are not reused after a delete. Values handed out are copies.
type MemStorage struct {
	mu sync.RWMutex

	users      map[int]models.User
	products   map[int]models.Product
	orders     map[int]models.Order
	orderItems map[int]models.OrderItem
	next       counters

	now func() time.Time
}

var _ Storage = (*MemStorage)(nil)

func NewMemStorage() *MemStorage {
	return &MemStorage{
		users:      make(map[int]models.User),
		products:   make(map[int]models.Product),
		orders:     make(map[int]models.Order),
		orderItems: make(map[int]models.OrderItem),
		next:       counters{users: 1, products: 1, orders: 1, orderItems: 1},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemStorage) GetUser(_ context.Context, id int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return &u, nil
}

func (s *MemStorage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.users) {
		if u := s.users[id]; u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (s *MemStorage) CreateUser(_ context.Context, in models.InsertUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == in.Username {
			return nil, fmt.Errorf("username %q: %w", in.Username, ErrConflict)
		}
	}

	id := s.next.users
	s.next.users++
	u := models.User{ID: id, Username: in.Username, Password: in.Password, Role: models.DefaultRole}
	s.users[id] = u
	return &u, nil
}

func (s *MemStorage) GetProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, id := range sortedKeys(s.products) {
		out = append(out, cloneProduct(s.products[id]))
	}
	return out, nil
}

func (s *MemStorage) GetProduct(_ context.Context, id int) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	p = cloneProduct(p)
	return &p, nil
}

func (s *MemStorage) CreateProduct(_ context.Context, in models.InsertProduct) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next.products
	s.next.products++
	p := cloneProduct(models.NewProduct(id, in))
	s.products[id] = p

	p = cloneProduct(p)
	return &p, nil
}

func (s *MemStorage) UpdateProduct(_ context.Context, id int, patch models.ProductPatch) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	p = cloneProduct(p)
	patch.Apply(&p)
	s.products[id] = p

	p = cloneProduct(p)
	return &p, nil
}

func (s *MemStorage) DeleteProduct(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

func (s *MemStorage) GetOrders(_ context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, id := range sortedKeys(s.orders) {
		out = append(out, cloneOrder(s.orders[id]))
	}
	return out, nil
}

func (s *MemStorage) GetOrder(_ context.Context, id int) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	o = cloneOrder(o)
	return &o, nil
}

func (s *MemStorage) GetOrderByTrackingCode(_ context.Context, code string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.orders) {
		o := s.orders[id]
		if o.TrackingCode != nil && *o.TrackingCode == code {
			o = cloneOrder(o)
			return &o, nil
		}
	}
	return nil, fmt.Errorf("tracking code %q: %w", code, ErrNotFound)
}

func (s *MemStorage) CreateOrder(_ context.Context, in models.InsertOrder) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next.orders
	s.next.orders++
	o := cloneOrder(models.NewOrder(id, in, s.now()))
	s.orders[id] = o

	o = cloneOrder(o)
	return &o, nil
}

func (s *MemStorage) UpdateOrder(_ context.Context, id int, patch models.OrderPatch) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if patch.ExpectedStatus != nil && o.Status != *patch.ExpectedStatus {
		return nil, fmt.Errorf("order %d is %s, not %s: %w", id, o.Status, *patch.ExpectedStatus, ErrConflict)
	}
	patch.Apply(&o)
	s.orders[id] = o

	o = cloneOrder(o)
	return &o, nil
}

func (s *MemStorage) GetOrderItems(_ context.Context, orderID int) ([]models.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.OrderItem, 0)
	for _, id := range sortedKeys(s.orderItems) {
		if it := s.orderItems[id]; it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemStorage) CreateOrderItem(_ context.Context, in models.InsertOrderItem) (*models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next.orderItems
	s.next.orderItems++
	it := models.NewOrderItem(id, in)
	s.orderItems[id] = it
	return &it, nil
}

func sortedKeys[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}

func cloneProduct(p models.Product) models.Product {
	if p.Images != nil {
		p.Images = slices.Clone(p.Images)
	}
	if p.Metadata != nil {
		p.Metadata = maps.Clone(p.Metadata)
	}
	if p.ShipperID != nil {
		v := *p.ShipperID
		p.ShipperID = &v
	}
	if p.WholesalePrice != nil {
		v := *p.WholesalePrice
		p.WholesalePrice = &v
	}
	return p
}

func cloneOrder(o models.Order) models.Order {
	if o.UserID != nil {
		v := *o.UserID
		o.UserID = &v
	}
	if o.TrackingCode != nil {
		v := *o.TrackingCode
		o.TrackingCode = &v
	}
	return o
}
