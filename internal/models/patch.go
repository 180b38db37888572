package models

import (
	"maps"

	"github.com/shopspring/decimal"
)

// ProductPatch lists every updatable product field. A nil field is left unchanged.
// Nullable fields cannot be cleared through a patch.
type ProductPatch struct {
	ShipperID      *string          `json:"shipperId"`
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice"`
	Images         []string         `json:"images"`
	InStock        *bool            `json:"inStock"`
	Metadata       Metadata         `json:"metadata"`
}

func (p ProductPatch) Apply(prod *Product) {
	if p.ShipperID != nil {
		v := *p.ShipperID
		prod.ShipperID = &v
	}
	if p.Title != nil {
		prod.Title = *p.Title
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = NewMoney(*p.Price)
	}
	if p.WholesalePrice != nil {
		v := NewMoney(*p.WholesalePrice)
		prod.WholesalePrice = &v
	}
	if p.Images != nil {
		prod.Images = append([]string(nil), p.Images...)
	}
	if p.InStock != nil {
		prod.InStock = *p.InStock
	}
	if p.Metadata != nil {
		prod.Metadata = maps.Clone(p.Metadata)
	}
}

// OrderPatch lists every updatable order field. id and createdAt are immutable.
type OrderPatch struct {
	UserID          *int             `json:"userId"`
	Status          *OrderStatus     `json:"status"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	ShippingAddress *string          `json:"shippingAddress"`
	PhoneNumber     *string          `json:"phoneNumber"`
	TrackingCode    *string          `json:"trackingCode"`

	// ExpectedStatus makes the update conditional: the store applies the patch only
	// while the order still has this status and reports ErrConflict otherwise.
	ExpectedStatus *OrderStatus `json:"-"`
}

func (p OrderPatch) Apply(o *Order) {
	if p.UserID != nil {
		v := *p.UserID
		o.UserID = &v
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.TotalAmount != nil {
		o.TotalAmount = NewMoney(*p.TotalAmount)
	}
	if p.ShippingAddress != nil {
		o.ShippingAddress = *p.ShippingAddress
	}
	if p.PhoneNumber != nil {
		o.PhoneNumber = *p.PhoneNumber
	}
	if p.TrackingCode != nil {
		v := *p.TrackingCode
		o.TrackingCode = &v
	}
}
