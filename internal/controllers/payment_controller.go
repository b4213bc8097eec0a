package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

type createPaymentRequest struct {
	Amount float64 `json:"amount"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// CreateOrder godoc
// @Summary Open a gateway payment
// @Description Registers the amount with Razorpay and returns the order handle and public key for checkout
// @Tags payment
// @Accept json
// @Produce json
// @Param request body createPaymentRequest true "Amount in major currency units"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/payment/create-order [post]
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Amount is required", err)
		return
	}

	intent, err := pc.paymentService.CreatePaymentIntent(c.Request.Context(), req.Amount)
	if err != nil {
		respondError(c, err, "Failed to create payment order")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"order": intent.Order, "key_id": intent.KeyID})
}

// VerifyPayment godoc
// @Summary Verify a gateway payment callback
// @Description Checks the HMAC-SHA256 signature over order_id|payment_id. Repeated callbacks for one payment are accepted once.
// @Tags payment
// @Accept json
// @Produce json
// @Param request body verifyPaymentRequest true "Gateway callback fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Router /api/payment/verify-payment [post]
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Order id, payment id and signature are required", err)
		return
	}

	record, replayed, err := pc.paymentService.VerifyCallback(c.Request.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		respondError(c, err, "Payment verification failed")
		return
	}

	message := "Payment verified successfully"
	if replayed {
		message = "Payment already verified"
	}
	respond(c, http.StatusOK, message, gin.H{"payment": record})
}
