package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
)

// exposeErrorDetail controls whether internal error text is sent to clients.
// It is switched off in production.
var exposeErrorDetail = true

// SetExposeErrorDetail toggles the "error" detail field on failure responses
func SetExposeErrorDetail(enabled bool) {
	exposeErrorDetail = enabled
}

// respond writes a success envelope merged with payload
func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// badRequest writes a 400 envelope for malformed requests
func badRequest(c *gin.Context, message string, err error) {
	apiErr := models.NewAPIError(models.ErrBadRequest, message)
	if err != nil && exposeErrorDetail {
		apiErr.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, apiErr)
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{services.ErrOTPNotFound, http.StatusBadRequest, models.ErrOTPNotFound},
	{services.ErrOTPMismatch, http.StatusBadRequest, models.ErrOTPInvalid},
	{services.ErrInvalidTransition, http.StatusBadRequest, models.ErrInvalidTransition},
	{services.ErrInvalidSignature, http.StatusBadRequest, models.ErrPaymentSignature},
	{services.ErrInvalidInput, http.StatusBadRequest, models.ErrValidationFailed},
	{services.ErrUnauthorized, http.StatusUnauthorized, models.ErrUnauthorized},
	{services.ErrForbidden, http.StatusForbidden, models.ErrForbidden},
	{services.ErrNotFound, http.StatusNotFound, models.ErrNotFound},
	{services.ErrStaleVersion, http.StatusConflict, models.ErrStaleVersion},
	{services.ErrAlreadyExists, http.StatusConflict, models.ErrConflict},
	{services.ErrConflict, http.StatusConflict, models.ErrConflict},
	{services.ErrGateway, http.StatusInternalServerError, models.ErrPaymentGateway},
	{services.ErrDelivery, http.StatusInternalServerError, models.ErrNotificationFailed},
}

// respondError maps a service error to its status code and envelope.
// Unknown errors become a 500 with fallback as the message.
func respondError(c *gin.Context, err error, fallback string) {
	status, code, message := http.StatusInternalServerError, models.ErrInternalServer, fallback
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			status, code = m.status, m.code
			if status < http.StatusInternalServerError || m.target == services.ErrGateway {
				message = err.Error()
			}
			break
		}
	}

	apiErr := models.NewAPIError(code, message)
	if exposeErrorDetail && status >= http.StatusInternalServerError {
		apiErr.Error = err.Error()
	}
	c.JSON(status, apiErr)
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name+" format", err)
		return 0, false
	}
	return uint(id), true
}
