package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

const DefaultRole = "customer"

// Metadata is free-form product data. The catalog reads "category" and "rating" from it.
type Metadata map[string]any

type User struct {
	ID       int    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username string `gorm:"uniqueIndex;not null"      json:"username"`
	Password string `gorm:"not null"                  json:"-"`
	Role     string `gorm:"not null"                  json:"role"`
}

type Product struct {
	ID             int              `gorm:"primaryKey;autoIncrement"     json:"id"`
	ShipperID      *string          `gorm:"index"                        json:"shipperId"`
	Title          string           `gorm:"not null"                     json:"title"`
	Description    string           `gorm:"not null"                     json:"description"`
	Price          Money            `gorm:"type:decimal(12,2);not null"  json:"price"`
	WholesalePrice *Money           `gorm:"type:decimal(12,2)"           json:"wholesalePrice"`
	Images         []string         `gorm:"type:text;serializer:json"    json:"images"`
	InStock        bool             `gorm:"not null"                     json:"inStock"`
	Metadata       Metadata         `gorm:"type:text;serializer:json"    json:"metadata"`
}

type Order struct {
	ID              int             `gorm:"primaryKey;autoIncrement"     json:"id"`
	UserID          *int            `gorm:"index"                        json:"userId"`
	Status          OrderStatus     `gorm:"not null"                     json:"status"`
	TotalAmount     Money           `gorm:"type:decimal(12,2);not null"  json:"totalAmount"`
	ShippingAddress string          `gorm:"not null"                     json:"shippingAddress"`
	PhoneNumber     string          `gorm:"not null"                     json:"phoneNumber"`
	TrackingCode    *string         `gorm:"index"                        json:"trackingCode"`
	CreatedAt       time.Time       `gorm:"not null"                     json:"createdAt"`
}

// OrderItem references its order and product by id only; neither side is checked on read.
type OrderItem struct {
	ID        int             `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderID   int             `gorm:"index;not null"               json:"orderId"`
	ProductID int             `gorm:"not null"                     json:"productId"`
	Quantity  int             `gorm:"not null"                     json:"quantity"`
	Price     Money           `gorm:"type:decimal(12,2);not null"  json:"price"`
}

// Category returns metadata.category, or "" when absent or not a string.
func (p Product) Category() string {
	if p.Metadata == nil {
		return ""
	}
	s, _ := p.Metadata["category"].(string)
	return s
}

// Rating returns metadata.rating as a float. Missing or non-numeric ratings count as 0.
func (p Product) Rating() float64 {
	if p.Metadata == nil {
		return 0
	}
	switch v := p.Metadata["rating"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	}
	return 0
}
