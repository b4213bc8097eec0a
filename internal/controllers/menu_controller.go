package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
)

// MenuController handles HTTP requests related to the menu
type MenuController interface {
	// GetAll retrieves all menu items
	GetAll(c *gin.Context)
	// GetByCategory retrieves the items of one category
	GetByCategory(c *gin.Context)
	// GetByID retrieves a menu item by its ID
	GetByID(c *gin.Context)
	// Create adds a menu item
	Create(c *gin.Context)
	// Update replaces a menu item
	Update(c *gin.Context)
	// Delete removes a menu item by its ID
	Delete(c *gin.Context)
}

type menuController struct {
	service services.MenuService
}

// NewMenuController creates a new instance of MenuController
func NewMenuController(service services.MenuService) MenuController {
	return &menuController{service: service}
}

type menuItemRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Image        string   `json:"image"`
	Ingredients  []string `json:"ingredients"`
	IsVegetarian bool     `json:"isVegetarian"`
	IsSpicy      bool     `json:"isSpicy"`
	IsAvailable  *bool    `json:"isAvailable"`
}

func (r menuItemRequest) item() models.MenuItem {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return models.MenuItem{
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Category:     r.Category,
		Image:        r.Image,
		Ingredients:  r.Ingredients,
		IsVegetarian: r.IsVegetarian,
		IsSpicy:      r.IsSpicy,
		IsAvailable:  available,
	}
}

// GetAll godoc
// @Summary Get the menu
// @Description Get every menu item, optionally only the available ones
// @Tags menu
// @Produce json
// @Param available query bool false "Only list available items"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.APIError
// @Router /api/menu [get]
func (mc *menuController) GetAll(c *gin.Context) {
	items, err := mc.service.GetAll(c.Request.Context(), c.Query("available") == "true")
	if err != nil {
		respondError(c, err, "Failed to retrieve menu")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"items": items})
}

// GetByCategory godoc
// @Summary Get menu items by category
// @Tags menu
// @Produce json
// @Param categoryName path string true "Category name"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.APIError
// @Router /api/menu/category/{categoryName} [get]
func (mc *menuController) GetByCategory(c *gin.Context) {
	items, err := mc.service.GetByCategory(c.Request.Context(), c.Param("categoryName"))
	if err != nil {
		respondError(c, err, "Failed to retrieve menu")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"items": items})
}

// GetByID godoc
// @Summary Get a menu item by ID
// @Tags menu
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/menu/{id} [get]
func (mc *menuController) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := mc.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve menu item")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"item": item})
}

// Create godoc
// @Summary Create a menu item
// @Tags menu
// @Accept json
// @Produce json
// @Param item body menuItemRequest true "Menu item"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/menu [post]
func (mc *menuController) Create(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	item, err := mc.service.Create(c.Request.Context(), req.item())
	if err != nil {
		respondError(c, err, "Failed to create menu item")
		return
	}
	respond(c, http.StatusCreated, "Menu item created", gin.H{"item": item})
}

// Update godoc
// @Summary Update a menu item
// @Tags menu
// @Accept json
// @Produce json
// @Param id path int true "Menu item ID"
// @Param item body menuItemRequest true "Menu item"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/menu/{id} [put]
func (mc *menuController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	item := req.item()
	item.ID = id
	updated, err := mc.service.Update(c.Request.Context(), item)
	if err != nil {
		respondError(c, err, "Failed to update menu item")
		return
	}
	respond(c, http.StatusOK, "Menu item updated", gin.H{"item": updated})
}

// Delete godoc
// @Summary Delete a menu item
// @Tags menu
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/menu/{id} [delete]
func (mc *menuController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := mc.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete menu item")
		return
	}
	respond(c, http.StatusOK, "Menu item deleted", nil)
}
