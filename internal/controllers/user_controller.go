package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserController handles the signed-in user's profile, addresses and saved cards
type UserController struct {
	userService services.UserService
	authService services.AuthService
	logger      logrus.FieldLogger
}

func NewUserController(userService services.UserService, authService services.AuthService, logger logrus.FieldLogger) *UserController {
	return &UserController{userService: userService, authService: authService, logger: logger}
}

type profileRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
}

type addressRequest struct {
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	IsDefault  *bool  `json:"isDefault"`
}

func (r addressRequest) input() services.AddressInput {
	return services.AddressInput{
		Label:      r.Label,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		IsDefault:  r.IsDefault,
	}
}

type paymentMethodRequest struct {
	CardType    string `json:"cardType" binding:"required"`
	LastFour    string `json:"lastFour" binding:"required"`
	ExpiryMonth int    `json:"expiryMonth"`
	ExpiryYear  int    `json:"expiryYear"`
	IsDefault   bool   `json:"isDefault"`
}

// GetProfile godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/profile [get]
func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.userService.GetUserByID(c.GetUint("userID"))
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": user})
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Description Changing the email clears the verified flag and mails a new verification link
// @Tags users
// @Accept json
// @Produce json
// @Param request body profileRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/profile [put]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	user, emailChanged, err := uc.userService.UpdateProfile(c.GetUint("userID"), services.ProfileUpdate{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	message := "Profile updated"
	if emailChanged {
		if err := uc.authService.StartEmailVerification(user); err != nil {
			uc.logger.WithError(err).WithField("user_id", user.ID).Error("failed to start email verification")
		}
		message = "Profile updated, please verify your new email address"
	}
	respond(c, http.StatusOK, message, gin.H{"user": user})
}

// ListAddresses godoc
// @Summary List saved addresses
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/users/addresses [get]
func (uc *UserController) ListAddresses(c *gin.Context) {
	addresses, err := uc.userService.ListAddresses(c.GetUint("userID"))
	if err != nil {
		respondError(c, err, "Failed to load addresses")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"addresses": addresses})
}

// AddAddress godoc
// @Summary Save a new address
// @Tags users
// @Accept json
// @Produce json
// @Param request body addressRequest true "Address"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/addresses [post]
func (uc *UserController) AddAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	address, err := uc.userService.AddAddress(c.GetUint("userID"), req.input())
	if err != nil {
		respondError(c, err, "Failed to save address")
		return
	}
	respond(c, http.StatusCreated, "Address added", gin.H{"address": address})
}

// UpdateAddress godoc
// @Summary Update a saved address
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "Address ID"
// @Param request body addressRequest true "Address"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/addresses/{id} [put]
func (uc *UserController) UpdateAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	address, err := uc.userService.UpdateAddress(c.GetUint("userID"), id, req.input())
	if err != nil {
		respondError(c, err, "Failed to update address")
		return
	}
	respond(c, http.StatusOK, "Address updated", gin.H{"address": address})
}

// DeleteAddress godoc
// @Summary Delete a saved address
// @Tags users
// @Produce json
// @Param id path int true "Address ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/addresses/{id} [delete]
func (uc *UserController) DeleteAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := uc.userService.DeleteAddress(c.GetUint("userID"), id); err != nil {
		respondError(c, err, "Failed to delete address")
		return
	}
	respond(c, http.StatusOK, "Address deleted", nil)
}

// ListPaymentMethods godoc
// @Summary List saved payment methods
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/users/payment-methods [get]
func (uc *UserController) ListPaymentMethods(c *gin.Context) {
	methods, err := uc.userService.ListPaymentMethods(c.GetUint("userID"))
	if err != nil {
		respondError(c, err, "Failed to load payment methods")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"paymentMethods": methods})
}

// AddPaymentMethod godoc
// @Summary Save a card summary
// @Description Only the card type, last four digits and expiry are stored
// @Tags users
// @Accept json
// @Produce json
// @Param request body paymentMethodRequest true "Card summary"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/payment-methods [post]
func (uc *UserController) AddPaymentMethod(c *gin.Context) {
	var req paymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Card type and last four digits are required", err)
		return
	}

	method, err := uc.userService.AddPaymentMethod(c.GetUint("userID"), models.PaymentMethod{
		CardType:    req.CardType,
		LastFour:    req.LastFour,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondError(c, err, "Failed to save payment method")
		return
	}
	respond(c, http.StatusCreated, "Payment method added", gin.H{"paymentMethod": method})
}

// DeletePaymentMethod godoc
// @Summary Delete a saved payment method
// @Tags users
// @Produce json
// @Param id path int true "Payment method ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/payment-methods/{id} [delete]
func (uc *UserController) DeletePaymentMethod(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := uc.userService.DeletePaymentMethod(c.GetUint("userID"), id); err != nil {
		respondError(c, err, "Failed to delete payment method")
		return
	}
	respond(c, http.StatusOK, "Payment method deleted", nil)
}
