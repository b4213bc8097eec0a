package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
)

// InventoryController exposes stock management to admins
type InventoryController struct {
	inventoryService services.InventoryService
}

func NewInventoryController(inventoryService services.InventoryService) *InventoryController {
	return &InventoryController{inventoryService: inventoryService}
}

type addInventoryRequest struct {
	Name        string                   `json:"name" binding:"required"`
	Category    models.InventoryCategory `json:"category" binding:"required"`
	Quantity    int                      `json:"quantity"`
	Unit        string                   `json:"unit" binding:"required"`
	Threshold   int                      `json:"threshold"`
	Price       float64                  `json:"price"`
	Description string                   `json:"description"`
	ImageURL    string                   `json:"imageUrl"`
	IsAvailable *bool                    `json:"isAvailable"`
}

type updateInventoryRequest struct {
	Name        *string                   `json:"name"`
	Category    *models.InventoryCategory `json:"category"`
	Quantity    *int                      `json:"quantity"`
	Unit        *string                   `json:"unit"`
	Threshold   *int                      `json:"threshold"`
	Price       *float64                  `json:"price"`
	Description *string                   `json:"description"`
	ImageURL    *string                   `json:"imageUrl"`
	IsAvailable *bool                     `json:"isAvailable"`
	Version     *int                      `json:"version"`
}

type thresholdRequest struct {
	Threshold *int `json:"threshold" binding:"required"`
}

// List godoc
// @Summary List inventory
// @Tags inventory
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/inventory [get]
func (ic *InventoryController) List(c *gin.Context) {
	items, err := ic.inventoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve inventory")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"items": items})
}

// LowStock godoc
// @Summary List items below their restock threshold
// @Tags inventory
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/admin/inventory/low-stock [get]
func (ic *InventoryController) LowStock(c *gin.Context) {
	items, err := ic.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve low stock items")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"items": items, "count": len(items)})
}

// ByCategory godoc
// @Summary List inventory of one category
// @Tags inventory
// @Produce json
// @Param category path string true "base, sauce, cheese, veggie or meat"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/inventory/category/{category} [get]
func (ic *InventoryController) ByCategory(c *gin.Context) {
	category := models.InventoryCategory(c.Param("category"))
	items, err := ic.inventoryService.ListByCategory(c.Request.Context(), category)
	if err != nil {
		respondError(c, err, "Failed to retrieve inventory")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"items": items})
}

// GetByID godoc
// @Summary Get an inventory item
// @Tags inventory
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/inventory/{id} [get]
func (ic *InventoryController) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := ic.inventoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve inventory item")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"item": item})
}

// Add godoc
// @Summary Add an inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Param item body addInventoryRequest true "Item"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/inventory [post]
func (ic *InventoryController) Add(c *gin.Context) {
	var req addInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Name, category and unit are required", err)
		return
	}

	item, err := ic.inventoryService.Add(c.Request.Context(), services.InventoryInput{
		Name:        req.Name,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Threshold:   req.Threshold,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		respondError(c, err, "Failed to add inventory item")
		return
	}
	respond(c, http.StatusCreated, "Inventory item added", gin.H{"item": item})
}

// Update godoc
// @Summary Update an inventory item
// @Description Partial update. Dropping the quantity below the threshold alerts the admin.
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param item body updateInventoryRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/inventory/{id} [put]
func (ic *InventoryController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	item, err := ic.inventoryService.Update(c.Request.Context(), id, services.InventoryPatch{
		Name:            req.Name,
		Category:        req.Category,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		Threshold:       req.Threshold,
		Price:           req.Price,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		IsAvailable:     req.IsAvailable,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		respondError(c, err, "Failed to update inventory item")
		return
	}
	respond(c, http.StatusOK, "Inventory item updated", gin.H{"item": item})
}

// SetThreshold godoc
// @Summary Change the restock threshold
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body thresholdRequest true "Threshold, at least 1"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/inventory/{id}/threshold [patch]
func (ic *InventoryController) SetThreshold(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req thresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Threshold is required", err)
		return
	}

	item, err := ic.inventoryService.SetThreshold(c.Request.Context(), id, *req.Threshold)
	if err != nil {
		respondError(c, err, "Failed to update threshold")
		return
	}
	respond(c, http.StatusOK, "Threshold updated", gin.H{"item": item})
}

// Delete godoc
// @Summary Delete an inventory item
// @Tags inventory
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/inventory/{id} [delete]
func (ic *InventoryController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ic.inventoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete inventory item")
		return
	}
	respond(c, http.StatusOK, "Inventory item deleted", nil)
}
