package service

import (
	"context"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/storage"
)

type Stats struct {
	TotalProducts int          `json:"totalProducts"`
	TotalOrders   int          `json:"totalOrders"`
	PendingOrders int          `json:"pendingOrders"`
	Revenue       models.Money `json:"revenue"`
}

type DashboardService struct {
	Store storage.Storage
}

// Stats summarises the catalog and orders. Revenue counts every order that was not
// cancelled.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	products, err := s.Store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.Store.GetOrders(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{TotalProducts: len(products), TotalOrders: len(orders)}
	for _, o := range orders {
		if o.Status == models.OrderStatusPending {
			st.PendingOrders++
		}
		if o.Status != models.OrderStatusCancelled {
			st.Revenue = models.NewMoney(st.Revenue.Add(o.TotalAmount.Decimal))
		}
	}
	return st, nil
}
