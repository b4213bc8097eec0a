package models

import "time"

// MenuItem represents a pizza or side listed on the public menu
type MenuItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `json:"description"`
	Price        float64   `gorm:"not null" json:"price"`
	Category     string    `gorm:"not null;index" json:"category"`
	Image        string    `json:"image,omitempty"`
	Ingredients  []string  `gorm:"serializer:json" json:"ingredients"`
	IsVegetarian bool      `json:"isVegetarian"`
	IsSpicy      bool      `json:"isSpicy"`
	IsAvailable  bool      `gorm:"not null" json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
