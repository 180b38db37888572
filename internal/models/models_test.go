package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewProduct_Defaults(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	p := NewProduct(7, InsertProduct{Title: "T", Description: "D", Price: &price})

	assert.Equal(t, 7, p.ID)
	assert.True(t, p.InStock)
	assert.Nil(t, p.ShipperID)
	assert.Nil(t, p.WholesalePrice)
	assert.Nil(t, p.Images)
	assert.Nil(t, p.Metadata)
	assert.True(t, p.Price.Equal(price))
}

func TestProductPatch_ApplyKeepsAbsentFields(t *testing.T) {
	prod := Product{ID: 1, Title: "old", Description: "desc", Price: NewMoney(decimal.NewFromInt(5)), InStock: true}
	title := "new"
	out := false

	ProductPatch{Title: &title, InStock: &out}.Apply(&prod)

	assert.Equal(t, "new", prod.Title)
	assert.Equal(t, "desc", prod.Description)
	assert.False(t, prod.InStock)
	assert.True(t, prod.Price.Equal(decimal.NewFromInt(5)))
}

func TestOrderPatch_ApplyDoesNotTouchCreatedAt(t *testing.T) {
	o := NewOrder(3, InsertOrder{ShippingAddress: "a", PhoneNumber: "p"}, fixedTime)
	status := OrderStatusShipped
	code := "TRK-1"

	OrderPatch{Status: &status, TrackingCode: &code}.Apply(&o)

	assert.Equal(t, OrderStatusShipped, o.Status)
	require.NotNil(t, o.TrackingCode)
	assert.Equal(t, "TRK-1", *o.TrackingCode)
	assert.Equal(t, fixedTime, o.CreatedAt)
}

func TestNewOrder_DefaultsToPending(t *testing.T) {
	o := NewOrder(1, InsertOrder{}, fixedTime)
	assert.Equal(t, OrderStatusPending, o.Status)

	empty := OrderStatus("")
	o = NewOrder(1, InsertOrder{Status: &empty}, fixedTime)
	assert.Equal(t, OrderStatusPending, o.Status)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestProduct_CategoryAndRating(t *testing.T) {
	p := Product{Metadata: Metadata{"category": "shoes", "rating": 4.5}}
	assert.Equal(t, "shoes", p.Category())
	assert.Equal(t, 4.5, p.Rating())

	p = Product{Metadata: Metadata{"rating": "3.2"}}
	assert.Equal(t, "", p.Category())
	assert.InDelta(t, 3.2, p.Rating(), 1e-9)

	assert.Zero(t, Product{}.Rating())
}

func TestMoney_KeepsTwoFractionDigits(t *testing.T) {
	for in, want := range map[string]string{
		"10":     `"10.00"`,
		"10.00":  `"10.00"`,
		"12.5":   `"12.50"`,
		"0":      `"0.00"`,
		"19.999": `"20.00"`,
	} {
		b, err := json.Marshal(NewMoney(decimal.RequireFromString(in)))
		require.NoError(t, err, in)
		assert.Equal(t, want, string(b), in)
	}

	var zero Money
	assert.Equal(t, "0.00", zero.String())

	var back Money
	require.NoError(t, json.Unmarshal([]byte(`"7.10"`), &back))
	assert.True(t, back.Equal(decimal.RequireFromString("7.1")))

	v, err := NewMoney(decimal.NewFromInt(3)).Value()
	require.NoError(t, err)
	assert.Equal(t, "3.00", v)
}
