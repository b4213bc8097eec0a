// Package seed loads starter inventory and menu items from a YAML file
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"gopkg.in/yaml.v3"
)

type InventoryEntry struct {
	Name        string                   `yaml:"name"`
	Category    models.InventoryCategory `yaml:"category"`
	Quantity    int                      `yaml:"quantity"`
	Unit        string                   `yaml:"unit"`
	Threshold   int                      `yaml:"threshold"`
	Price       float64                  `yaml:"price"`
	Description string                   `yaml:"description"`
}

type MenuEntry struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Price        float64  `yaml:"price"`
	Category     string   `yaml:"category"`
	Image        string   `yaml:"image"`
	Ingredients  []string `yaml:"ingredients"`
	IsVegetarian bool     `yaml:"vegetarian"`
	IsSpicy      bool     `yaml:"spicy"`
}

// File is the seed document layout
type File struct {
	Inventory []InventoryEntry `yaml:"inventory"`
	Menu      []MenuEntry      `yaml:"menu"`
}

// Result counts what Apply inserted and skipped
type Result struct {
	InventoryAdded   int
	InventorySkipped int
	MenuAdded        int
}

// Parse decodes a seed document
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Load reads and parses the seed file at path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Apply inserts the inventory entries, skipping ones that already exist, and
// adds the menu entries only when the menu is empty.
func (f *File) Apply(ctx context.Context, inventory services.InventoryService, menu services.MenuService) (Result, error) {
	var res Result
	for _, e := range f.Inventory {
		_, err := inventory.Add(ctx, services.InventoryInput{
			Name:        e.Name,
			Category:    e.Category,
			Quantity:    e.Quantity,
			Unit:        e.Unit,
			Threshold:   e.Threshold,
			Price:       e.Price,
			Description: e.Description,
		})
		switch {
		case errors.Is(err, services.ErrAlreadyExists):
			res.InventorySkipped++
		case err != nil:
			return res, fmt.Errorf("inventory %q: %w", e.Name, err)
		default:
			res.InventoryAdded++
		}
	}

	items := make([]models.MenuItem, 0, len(f.Menu))
	for _, e := range f.Menu {
		items = append(items, models.MenuItem{
			Name:         e.Name,
			Description:  e.Description,
			Price:        e.Price,
			Category:     e.Category,
			Image:        e.Image,
			Ingredients:  e.Ingredients,
			IsVegetarian: e.IsVegetarian,
			IsSpicy:      e.IsSpicy,
			IsAvailable:  true,
		})
	}
	added, err := menu.SeedIfEmpty(ctx, items)
	res.MenuAdded = added
	if err != nil {
		return res, fmt.Errorf("menu: %w", err)
	}
	return res, nil
}
