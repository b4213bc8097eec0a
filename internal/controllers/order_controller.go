package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
)

// IdempotencyHeader lets a client retry order creation without duplicating it
const IdempotencyHeader = "Idempotency-Key"

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

type createOrderRequest struct {
	Items           []models.OrderItem      `json:"items"`
	TotalAmount     float64                 `json:"totalAmount"`
	DeliveryAddress *models.DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   models.PaymentMethodTag `json:"paymentMethod"`
	PaymentDetails  map[string]any          `json:"paymentDetails"`
	CustomerDetails map[string]any          `json:"customerDetails"`
	Notes           string                  `json:"notes"`
}

type updateStatusRequest struct {
	Status  models.OrderStatus `json:"status" binding:"required"`
	Version *int               `json:"version"`
}

type cancelOrderRequest struct {
	Version *int `json:"version"`
}

// Create godoc
// @Summary Place an order
// @Description Creates an order in the processing state. Repeating a request with the same Idempotency-Key returns the first order.
// @Tags orders
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated retry key"
// @Param order body createOrderRequest true "Order"
// @Success 201 {object} map[string]interface{}
// @Success 200 {object} map[string]interface{} "Replayed order"
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/create [post]
func (oc *OrderController) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, created, err := oc.orderService.Create(c.Request.Context(), c.GetUint("userID"), services.CreateOrderInput{
		Items:           req.Items,
		TotalAmount:     req.TotalAmount,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  req.PaymentDetails,
		CustomerDetails: req.CustomerDetails,
		Notes:           req.Notes,
		IdempotencyKey:  c.GetHeader(IdempotencyHeader),
	})
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}

	if !created {
		respond(c, http.StatusOK, "Order already placed", gin.H{"order": order})
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", gin.H{"order": order})
}

// History godoc
// @Summary List my orders
// @Description Orders owned by the caller, newest first
// @Tags orders
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/history [get]
func (oc *OrderController) History(c *gin.Context) {
	orders, err := oc.orderService.ListForUser(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve orders")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"orders": orders})
}

// GetByID godoc
// @Summary Get an order
// @Description Owners and admins can read an order with its status history
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id} [get]
func (oc *OrderController) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	role := models.AccountType(c.GetString("userRole"))
	order, err := oc.orderService.GetByID(c.Request.Context(), id, c.GetUint("userID"), role)
	if err != nil {
		respondError(c, err, "Failed to retrieve order")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"order": order})
}

// UpdateStatus godoc
// @Summary Move an order to a new status
// @Description Follows the order lifecycle. Send the last seen version to reject concurrent edits.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body updateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id}/status [patch]
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Status is required", err)
		return
	}

	order, err := oc.orderService.UpdateStatus(c.Request.Context(), id, req.Status, req.Version, c.GetUint("userID"))
	if err != nil {
		respondError(c, err, "Failed to update order status")
		return
	}
	respond(c, http.StatusOK, "Order status updated", gin.H{"order": order})
}

// Cancel godoc
// @Summary Cancel my order
// @Description Allowed while the order is processing or confirmed
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body cancelOrderRequest false "Last seen version"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id}/cancel [post]
func (oc *OrderController) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := oc.orderService.Cancel(c.Request.Context(), id, c.GetUint("userID"), req.Version)
	if err != nil {
		respondError(c, err, "Failed to cancel order")
		return
	}
	respond(c, http.StatusOK, "Order cancelled", gin.H{"order": order})
}

// ListAll godoc
// @Summary List all orders
// @Tags admin
// @Produce json
// @Param status query string false "Only orders in this status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/orders [get]
func (oc *OrderController) ListAll(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "Unknown order status", nil)
		return
	}
	orders, err := oc.orderService.ListAll(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, "Failed to retrieve orders")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"orders": orders})
}
