package models

import (
	"time"
)

// OTP is a one-time signup code bound to an email address.
// Rows past ExpiresAt are never returned and are purged when a new code is issued.
type OTP struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"index;not null"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (OTP) TableName() string {
	return "otps"
}
