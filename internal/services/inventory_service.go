package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InventoryInput is a new stock item; nil IsAvailable means available
type InventoryInput struct {
	Name        string
	Category    models.InventoryCategory
	Quantity    int
	Unit        string
	Threshold   int
	Price       float64
	Description string
	ImageURL    string
	IsAvailable *bool
}

// InventoryPatch is a partial update; nil fields are left unchanged
type InventoryPatch struct {
	Name            *string
	Category        *models.InventoryCategory
	Quantity        *int
	Unit            *string
	Threshold       *int
	Price           *float64
	Description     *string
	ImageURL        *string
	IsAvailable     *bool
	ExpectedVersion *int
}

type InventoryService interface {
	Add(ctx context.Context, input InventoryInput) (*models.InventoryItem, error)
	// Update applies the patch; when it sets a quantity below the stored
	// threshold a single low-stock alert is queued.
	Update(ctx context.Context, id uint, patch InventoryPatch) (*models.InventoryItem, error)
	SetThreshold(ctx context.Context, id uint, threshold int) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	ListByCategory(ctx context.Context, category models.InventoryCategory) ([]models.InventoryItem, error)
	List(ctx context.Context) ([]models.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]models.InventoryItem, error)
}

type inventoryService struct {
	db         *gorm.DB
	notifier   notify.Notifier
	adminEmail string
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewInventoryService(db *gorm.DB, notifier notify.Notifier, adminEmail string, logger logrus.FieldLogger) InventoryService {
	return &inventoryService{db: db, notifier: notifier, adminEmail: adminEmail, log: logger, now: time.Now}
}

func (s *inventoryService) Add(ctx context.Context, input InventoryInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || strings.TrimSpace(input.Unit) == "" {
		return nil, fmt.Errorf("%w: name and unit are required", ErrInvalidInput)
	}
	if !input.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.Category)
	}
	if input.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	}
	if input.Threshold < 1 {
		return nil, fmt.Errorf("%w: threshold must be at least 1", ErrInvalidInput)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.InventoryItem{}).Where("name = ? AND category = ?", name, input.Category).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s already exists in %s", ErrAlreadyExists, name, input.Category)
	}

	item := &models.InventoryItem{
		Name:          name,
		Category:      input.Category,
		Quantity:      input.Quantity,
		Unit:          input.Unit,
		Threshold:     input.Threshold,
		Price:         input.Price,
		Description:   input.Description,
		ImageURL:      input.ImageURL,
		IsAvailable:   input.IsAvailable == nil || *input.IsAvailable,
		LastRestocked: s.now(),
		Version:       1,
	}
	if err := db.Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s already exists in %s", ErrAlreadyExists, name, input.Category)
		}
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) Update(ctx context.Context, id uint, patch InventoryPatch) (*models.InventoryItem, error) {
	db := s.db.WithContext(ctx)
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.ExpectedVersion != nil && *patch.ExpectedVersion != current.Version {
		return nil, fmt.Errorf("inventory item %d at version %d: %w", id, current.Version, ErrStaleVersion)
	}

	updates, err := s.patchColumns(current, patch)
	if err != nil {
		return nil, err
	}
	updates["version"] = gorm.Expr("version + 1")

	result := db.Model(&models.InventoryItem{}).
		Where("id = ? AND version = ?", id, current.Version).
		Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: name and category already in use", ErrAlreadyExists)
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("inventory item %d: %w", id, ErrStaleVersion)
	}

	// Re-read so the threshold check sees what was actually stored
	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Quantity != nil && updated.IsBelowThreshold() {
		s.log.WithFields(logrus.Fields{
			"item":      updated.Name,
			"quantity":  updated.Quantity,
			"threshold": updated.Threshold,
		}).Warn("inventory below threshold")
		s.notifier.Enqueue(notify.LowStock(s.adminEmail, updated))
	}
	return updated, nil
}

func (s *inventoryService) patchColumns(current *models.InventoryItem, patch InventoryPatch) (map[string]any, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		updates["name"] = name
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *patch.Category)
		}
		updates["category"] = *patch.Category
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
		}
		updates["quantity"] = *patch.Quantity
		if *patch.Quantity > current.Quantity {
			updates["last_restocked"] = s.now()
		}
	}
	if patch.Unit != nil {
		updates["unit"] = *patch.Unit
	}
	if patch.Threshold != nil {
		if *patch.Threshold < 1 {
			return nil, fmt.Errorf("%w: threshold must be at least 1", ErrInvalidInput)
		}
		updates["threshold"] = *patch.Threshold
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
		}
		updates["price"] = *patch.Price
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.IsAvailable != nil {
		updates["is_available"] = *patch.IsAvailable
	}
	updates["updated_at"] = s.now()
	return updates, nil
}

func (s *inventoryService) SetThreshold(ctx context.Context, id uint, threshold int) (*models.InventoryItem, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: threshold must be at least 1", ErrInvalidInput)
	}
	return s.Update(ctx, id, InventoryPatch{Threshold: &threshold})
}

func (s *inventoryService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.InventoryItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory item %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *inventoryService) GetByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("inventory item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *inventoryService) ListByCategory(ctx context.Context, category models.InventoryCategory) ([]models.InventoryItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Where("category = ?", category).Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *inventoryService) List(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Order("category, name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Where("quantity < threshold").Order("category, name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
