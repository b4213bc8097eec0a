package models

import "time"

// OrderStatus represents all possible states of a pizza order
type OrderStatus string

const (
	StatusProcessing     OrderStatus = "processing"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{
	StatusProcessing, StatusConfirmed, StatusPreparing,
	StatusOutForDelivery, StatusDelivered, StatusCancelled,
}

// Valid reports whether s is one of the six known statuses
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PaymentMethodTag identifies how an order is paid
type PaymentMethodTag string

const (
	PaymentCreditCard PaymentMethodTag = "credit_card"
	PaymentCash       PaymentMethodTag = "cash"
	PaymentPaypal     PaymentMethodTag = "paypal"
	PaymentOnline     PaymentMethodTag = "online"
)

// Valid reports whether the tag is accepted at checkout
func (p PaymentMethodTag) Valid() bool {
	switch p {
	case PaymentCreditCard, PaymentCash, PaymentPaypal, PaymentOnline:
		return true
	}
	return false
}

// OrderItem is a snapshot of one ordered line
type OrderItem struct {
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Quantity       int            `json:"quantity"`
	Customizations map[string]any `json:"customizations,omitempty"`
}

// DeliveryAddress is the structured address an order is delivered to
type DeliveryAddress struct {
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Instructions string `json:"instructions,omitempty"`
}

// IsZero reports whether no address field was supplied
func (a DeliveryAddress) IsZero() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.ZipCode == ""
}

type Order struct {
	ID                    uint                 `gorm:"primaryKey" json:"id"`
	UserID                uint                 `gorm:"not null;index;uniqueIndex:idx_orders_user_idempotency" json:"userId"`
	Items                 []OrderItem          `gorm:"serializer:json;not null" json:"items"`
	DeliveryAddress       DeliveryAddress      `gorm:"embedded;embeddedPrefix:delivery_" json:"deliveryAddress"`
	PaymentMethod         PaymentMethodTag     `gorm:"not null" json:"paymentMethod"`
	PaymentDetails        map[string]any       `gorm:"serializer:json" json:"paymentDetails,omitempty"`
	CustomerDetails       map[string]any       `gorm:"serializer:json" json:"customerDetails,omitempty"`
	Notes                 string               `json:"notes,omitempty"`
	TotalAmount           float64              `gorm:"not null" json:"totalAmount"`
	Status                OrderStatus          `gorm:"not null;default:'processing';index" json:"status"`
	EstimatedDeliveryTime *time.Time           `json:"estimatedDeliveryTime,omitempty"`
	IdempotencyKey        *string              `gorm:"uniqueIndex:idx_orders_user_idempotency" json:"-"`
	Version               int                  `gorm:"not null;default:1" json:"version"`
	StatusHistory         []OrderStatusHistory `gorm:"constraint:OnDelete:CASCADE" json:"statusHistory,omitempty"`
	CreatedAt             time.Time            `gorm:"index" json:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt"`
}

// OrderStatusHistory tracks every status change of an order
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"orderId"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `gorm:"not null" json:"toStatus"`
	ChangedBy  uint        `json:"changedBy"`
	Actor      string      `json:"actor"`
	CreatedAt  time.Time   `json:"createdAt"`
}
