package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/shipper"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, ev mykafka.Event) error {
	args := m.Called(ctx, topic, key, ev)
	return args.Error(0)
}

func eventOfType(t string) any {
	return mock.MatchedBy(func(ev mykafka.Event) bool { return ev.Type == t })
}

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) IndexProduct(ctx context.Context, p models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockIndex) DeleteProduct(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	args := m.Called(ctx, query, from, size)
	if args.Get(1) == nil {
		return args.Get(0).(int64), nil, args.Error(2)
	}
	return args.Get(0).(int64), args.Get(1).([]models.Product), args.Error(2)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type mockShipper struct {
	mock.Mock
}

func (m *mockShipper) GetProduct(ctx context.Context, id string) (*shipper.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipper.Product), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
