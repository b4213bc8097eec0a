package seed

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/database"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sample = `
inventory:
  - name: Mozzarella
    category: cheese
    quantity: 20
    unit: kg
    threshold: 5
    price: 4.5
  - name: Thin crust
    category: base
    quantity: 50
    unit: pcs
    threshold: 10
menu:
  - name: Margherita
    price: 9.99
    category: pizza
    vegetarian: true
    ingredients: [tomato, mozzarella, basil]
`

type discard struct{}

func (discard) Enqueue(notify.Notification) {}

func setup(t *testing.T) (services.InventoryService, services.MenuService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	log, _ := test.NewNullLogger()
	return services.NewInventoryService(db, discard{}, "admin@pizza.test", log), services.NewMenuService(db), db
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, f.Inventory, 2)
	assert.Equal(t, models.CategoryCheese, f.Inventory[0].Category)
	require.Len(t, f.Menu, 1)
	assert.True(t, f.Menu[0].IsVegetarian)
	assert.Equal(t, []string{"tomato", "mozzarella", "basil"}, f.Menu[0].Ingredients)

	_, err = Parse([]byte("inventory: [unclosed"))
	assert.Error(t, err)
}

func TestApplyIsRepeatable(t *testing.T) {
	inventory, menu, db := setup(t)
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	res, err := f.Apply(context.Background(), inventory, menu)
	require.NoError(t, err)
	assert.Equal(t, Result{InventoryAdded: 2, MenuAdded: 1}, res)

	res, err = f.Apply(context.Background(), inventory, menu)
	require.NoError(t, err)
	assert.Equal(t, Result{InventorySkipped: 2}, res)

	var count int64
	require.NoError(t, db.Model(&models.InventoryItem{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestApplyRejectsInvalidEntry(t *testing.T) {
	inventory, menu, _ := setup(t)
	f := &File{Inventory: []InventoryEntry{{Name: "Ghost pepper", Category: "dessert", Quantity: 1, Unit: "kg", Threshold: 1}}}

	_, err := f.Apply(context.Background(), inventory, menu)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}
