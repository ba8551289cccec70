package models

import (
	"time"
)

// Order status values. The linear flow is PENDING -> CONFIRMED -> SHIPPED ->
// DELIVERED; CANCELLED branches off any non-terminal status.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// OrderChannelWhatsApp is the only order channel in this flow.
const OrderChannelWhatsApp = "WHATSAPP"

// OrderStatusValues lists every status, in canonical reporting order.
var OrderStatusValues = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether value is a known order status.
func IsValidOrderStatus(value string) bool {
	return containsValue(OrderStatusValues, value)
}

// Order represents a placed purchase. Pricing fields and the customer snapshot
// are frozen at creation time; only the status and its milestone timestamps
// change afterwards.
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"-"`
	OrderID      string      `gorm:"uniqueIndex;not null;size:20" json:"order_id"`
	Status       string      `gorm:"not null;default:'PENDING';index" json:"status"`
	Channel      string      `gorm:"not null;default:'WHATSAPP'" json:"channel"`
	Subtotal     int         `gorm:"not null" json:"subtotal"`
	Shipping     int         `gorm:"not null" json:"shipping"`
	Total        int         `gorm:"not null" json:"total"`
	CustomerName string      `gorm:"not null" json:"customer_name"`
	Phone        string      `gorm:"not null;index" json:"phone"`
	City         string      `gorm:"not null" json:"city"`
	Address      string      `gorm:"not null" json:"address"`
	Notes        *string     `json:"notes"`
	ConfirmedAt  *time.Time  `json:"confirmed_at"`
	ShippedAt    *time.Time  `json:"shipped_at"`
	DeliveredAt  *time.Time  `json:"delivered_at"`
	CancelledAt  *time.Time  `json:"cancelled_at"`
	Items        []OrderItem `gorm:"foreignKey:OrderRef;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a line within an order. BookID references the catalog without a
// foreign key constraint; the book may be deleted after the order exists, and
// the price/title/image snapshots are never recomputed from the live record.
type OrderItem struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	OrderRef      uint      `gorm:"not null;index" json:"-"` // surrogate key of the owning order
	BookID        string    `gorm:"not null;size:80;index" json:"book_id"`
	Qty           int       `gorm:"not null;check:qty > 0" json:"qty"`
	UnitPrice     int       `gorm:"not null" json:"unit_price"`
	TitleSnapshot string    `gorm:"not null" json:"title_snapshot"`
	ImageSnapshot *string   `json:"image_snapshot"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
