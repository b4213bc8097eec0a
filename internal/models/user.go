package models

import (
	"time"
)

// AccountType is the role carried by a user and by the session claims
type AccountType string

const (
	AccountTypeUser  AccountType = "User"
	AccountTypeAdmin AccountType = "Admin"
)

// Valid reports whether the account type is one of the known roles
func (a AccountType) Valid() bool {
	return a == AccountTypeUser || a == AccountTypeAdmin
}

type User struct {
	ID                   uint        `gorm:"primaryKey" json:"id"`
	FirstName            string      `gorm:"not null" json:"firstName"`
	LastName             string      `gorm:"not null" json:"lastName"`
	Email                string      `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash         string      `gorm:"not null" json:"-"`
	ContactNumber        string      `json:"contactNumber,omitempty"`
	AccountType          AccountType `gorm:"not null;default:'User'" json:"accountType"`
	IsVerified           bool        `gorm:"not null;default:false" json:"isVerified"`
	Token                string      `json:"-"`
	VerificationToken    string      `json:"-"`
	ResetPasswordToken   string      `json:"-"`
	ResetPasswordExpires *time.Time  `json:"-"`

	Addresses      []Address       `gorm:"constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	PaymentMethods []PaymentMethod `gorm:"constraint:OnDelete:CASCADE" json:"paymentMethods,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin account type
func (u *User) IsAdmin() bool {
	return u.AccountType == AccountTypeAdmin
}

// Address is a delivery address owned by a user
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"-"`
	Label      string    `json:"label"`
	Street     string    `gorm:"not null" json:"street"`
	City       string    `gorm:"not null" json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postalCode"`
	IsDefault  bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PaymentMethod is a card summary owned by a user; full card data is never stored
type PaymentMethod struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"-"`
	CardType    string    `gorm:"not null" json:"cardType"`
	LastFour    string    `gorm:"size:4;not null" json:"lastFour"`
	ExpiryMonth int       `json:"expiryMonth"`
	ExpiryYear  int       `json:"expiryYear"`
	IsDefault   bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
