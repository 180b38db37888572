package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Insert types carry the fields a client may supply at creation time. Server-assigned
// fields (id, createdAt) are absent. Pointers mark fields that must be distinguishable
// from their zero value.

type InsertUser struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type InsertProduct struct {
	ShipperID      *string          `json:"shipperId"`
	Title          string           `json:"title"          validate:"required"`
	Description    string           `json:"description"    validate:"required"`
	Price          *decimal.Decimal `json:"price"          validate:"required,gte=0"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice" validate:"omitempty,gte=0"`
	Images         []string         `json:"images"         validate:"omitempty,dive,required"`
	InStock        *bool            `json:"inStock"`
	Metadata       Metadata         `json:"metadata"`
}

type InsertOrder struct {
	UserID          *int             `json:"userId"`
	Status          *OrderStatus     `json:"status"          validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"     validate:"required,gte=0"`
	ShippingAddress string           `json:"shippingAddress" validate:"required"`
	PhoneNumber     string           `json:"phoneNumber"     validate:"required"`
	TrackingCode    *string          `json:"trackingCode"`
}

type InsertOrderItem struct {
	OrderID   *int             `json:"orderId"   validate:"required"`
	ProductID *int             `json:"productId" validate:"required"`
	Quantity  *int             `json:"quantity"  validate:"required,gt=0"`
	Price     *decimal.Decimal `json:"price"     validate:"required,gte=0"`
}

// NewProduct applies the creation defaults to a validated insert payload.
func NewProduct(id int, in InsertProduct) Product {
	p := Product{
		ID:          id,
		ShipperID:   in.ShipperID,
		Title:       in.Title,
		Description: in.Description,
		Images:      in.Images,
		InStock:     true,
		Metadata:    in.Metadata,
	}
	if in.Price != nil {
		p.Price = NewMoney(*in.Price)
	}
	if in.WholesalePrice != nil {
		w := NewMoney(*in.WholesalePrice)
		p.WholesalePrice = &w
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	return p
}

func NewOrder(id int, in InsertOrder, now time.Time) Order {
	o := Order{
		ID:              id,
		UserID:          in.UserID,
		Status:          OrderStatusPending,
		ShippingAddress: in.ShippingAddress,
		PhoneNumber:     in.PhoneNumber,
		TrackingCode:    in.TrackingCode,
		CreatedAt:       now,
	}
	if in.Status != nil && *in.Status != "" {
		o.Status = *in.Status
	}
	if in.TotalAmount != nil {
		o.TotalAmount = NewMoney(*in.TotalAmount)
	}
	return o
}

func NewOrderItem(id int, in InsertOrderItem) OrderItem {
	item := OrderItem{ID: id}
	if in.OrderID != nil {
		item.OrderID = *in.OrderID
	}
	if in.ProductID != nil {
		item.ProductID = *in.ProductID
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.Price != nil {
		item.Price = NewMoney(*in.Price)
	}
	return item
}
