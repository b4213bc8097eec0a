package models

import "time"

// PaymentRecord is written once per verified gateway payment
type PaymentRecord struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	GatewayOrderID   string    `gorm:"not null;index" json:"gatewayOrderId"`
	GatewayPaymentID string    `gorm:"not null;uniqueIndex" json:"gatewayPaymentId"`
	Signature        string    `gorm:"not null" json:"-"`
	VerifiedAt       time.Time `gorm:"not null" json:"verifiedAt"`
	CreatedAt        time.Time `json:"createdAt"`
}
