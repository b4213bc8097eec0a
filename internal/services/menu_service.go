package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"gorm.io/gorm"
)

// MenuService provides methods to interact with the menu catalog
type MenuService interface {
	// GetAll retrieves every menu item, optionally only available ones
	GetAll(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error)
	// GetByCategory retrieves the items of one category
	GetByCategory(ctx context.Context, category string) ([]models.MenuItem, error)
	// GetByID retrieves a menu item by its ID
	GetByID(ctx context.Context, id uint) (*models.MenuItem, error)
	// Create adds a new item to the menu
	Create(ctx context.Context, item models.MenuItem) (*models.MenuItem, error)
	// Update replaces an existing menu item
	Update(ctx context.Context, item models.MenuItem) (*models.MenuItem, error)
	// Delete removes a menu item by its ID
	Delete(ctx context.Context, id uint) error
	// SeedIfEmpty inserts items only when the catalog has none
	SeedIfEmpty(ctx context.Context, items []models.MenuItem) (int, error)
}

// menuService is the implementation of the MenuService interface
type menuService struct {
	db *gorm.DB
}

// NewMenuService creates a new instance of MenuService
func NewMenuService(db *gorm.DB) MenuService {
	return &menuService{db: db}
}

// DefaultMenu is the catalog a fresh database starts with
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Margherita", Description: "Classic tomato, mozzarella and basil", Price: 10.99, Category: "pizza",
			Ingredients: []string{"Tomato Sauce", "Mozzarella", "Basil"}, IsVegetarian: true, IsAvailable: true},
		{Name: "Pepperoni", Description: "Mozzarella topped with spicy pepperoni", Price: 12.99, Category: "pizza",
			Ingredients: []string{"Tomato Sauce", "Mozzarella", "Pepperoni"}, IsSpicy: true, IsAvailable: true},
		{Name: "Vegetarian", Description: "Garden vegetables on tomato sauce", Price: 11.99, Category: "pizza",
			Ingredients: []string{"Tomato Sauce", "Mozzarella", "Bell Peppers", "Olives"}, IsVegetarian: true, IsAvailable: true},
	}
}

func validateMenuItem(item *models.MenuItem) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.ToLower(strings.TrimSpace(item.Category))
	if item.Name == "" || item.Category == "" {
		return fmt.Errorf("%w: name and category are required", ErrInvalidInput)
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (s *menuService) GetAll(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error) {
	var items []models.MenuItem
	query := s.db.WithContext(ctx).Order("category, name")
	if onlyAvailable {
		query = query.Where("is_available = ?", true)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *menuService) GetByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.WithContext(ctx).
		Where("category = ?", strings.ToLower(strings.TrimSpace(category))).
		Order("name").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *menuService) GetByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *menuService) Create(ctx context.Context, item models.MenuItem) (*models.MenuItem, error) {
	if err := validateMenuItem(&item); err != nil {
		return nil, err
	}
	item.ID = 0
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *menuService) Update(ctx context.Context, item models.MenuItem) (*models.MenuItem, error) {
	existing, err := s.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if err := validateMenuItem(&item); err != nil {
		return nil, err
	}
	item.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *menuService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *menuService) SeedIfEmpty(ctx context.Context, items []models.MenuItem) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	for i := range items {
		if _, err := s.Create(ctx, items[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}
