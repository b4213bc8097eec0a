package models

import "time"

// InventoryCategory groups stock items by pizza component
type InventoryCategory string

const (
	CategoryBase   InventoryCategory = "base"
	CategorySauce  InventoryCategory = "sauce"
	CategoryCheese InventoryCategory = "cheese"
	CategoryVeggie InventoryCategory = "veggie"
	CategoryMeat   InventoryCategory = "meat"
)

// Valid reports whether c is a known category
func (c InventoryCategory) Valid() bool {
	switch c {
	case CategoryBase, CategorySauce, CategoryCheese, CategoryVeggie, CategoryMeat:
		return true
	}
	return false
}

// InventoryItem is one stock record; quantity >= 0 and threshold >= 1
type InventoryItem struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Name          string            `gorm:"not null;uniqueIndex:idx_inventory_name_category" json:"name"`
	Category      InventoryCategory `gorm:"not null;index;uniqueIndex:idx_inventory_name_category" json:"category"`
	Quantity      int               `gorm:"not null;check:quantity >= 0" json:"quantity"`
	Unit          string            `gorm:"not null" json:"unit"`
	Threshold     int               `gorm:"not null;check:threshold >= 1" json:"threshold"`
	Price         float64           `gorm:"not null" json:"price"`
	Description   string            `json:"description,omitempty"`
	ImageURL      string            `json:"imageUrl,omitempty"`
	IsAvailable   bool              `gorm:"not null" json:"isAvailable"`
	LastRestocked time.Time         `json:"lastRestocked"`
	Version       int               `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// IsBelowThreshold reports whether the item needs restocking
func (i *InventoryItem) IsBelowThreshold() bool {
	return i.Quantity < i.Threshold
}
