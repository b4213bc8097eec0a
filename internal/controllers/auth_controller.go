package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/middleware"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthController handles signup, login and the token-gated account flows
type AuthController struct {
	authService  services.AuthService
	otpService   services.OTPService
	echoOTP      bool
	secureCookie bool
}

// NewAuthController creates the auth handlers. echoOTP returns the code in the
// sendotp response and must stay off outside local development.
func NewAuthController(authService services.AuthService, otpService services.OTPService, echoOTP, secureCookie bool) *AuthController {
	return &AuthController{
		authService:  authService,
		otpService:   otpService,
		echoOTP:      echoOTP,
		secureCookie: secureCookie,
	}
}

type sendOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

type signupRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	ContactNumber   string `json:"contactNumber"`
	OTP             string `json:"otp" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) setSessionCookie(c *gin.Context, session *services.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", ac.secureCookie, true)
}

// SendOTP godoc
// @Summary Request a signup code
// @Description Generate a 6-digit code and mail it to an email address that has no account yet
// @Tags auth
// @Accept json
// @Produce json
// @Param request body sendOTPRequest true "Email address"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/auth/sendotp [post]
func (ac *AuthController) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email is required", err)
		return
	}

	code, err := ac.otpService.RequestCode(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Failed to send verification code")
		return
	}

	payload := gin.H{}
	if ac.echoOTP {
		payload["otp"] = code
	}
	respond(c, http.StatusOK, "Verification code sent", payload)
}

// Signup godoc
// @Summary Create an account
// @Description Create a verified customer account using a code from sendotp
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Signup form"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/auth/signup [post]
func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "All required fields must be provided", err)
		return
	}

	user, session, err := ac.authService.Signup(c.Request.Context(), services.SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		ContactNumber:   req.ContactNumber,
		OTP:             req.OTP,
	})
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	ac.setSessionCookie(c, session)
	respond(c, http.StatusOK, "Account created", gin.H{
		"user":      user,
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
	})
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a session token, also set as an httpOnly cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required", err)
		return
	}

	user, session, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	ac.setSessionCookie(c, session)
	respond(c, http.StatusOK, "Login successful", gin.H{
		"user":      user,
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
	})
}

// Logout godoc
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.authService.Logout(c.GetUint("userID")); err != nil {
		respondError(c, err, "Logout failed")
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", ac.secureCookie, true)
	respond(c, http.StatusOK, "Logged out", nil)
}

// ChangePassword godoc
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body changePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/auth/change-password [post]
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Current and new password are required", err)
		return
	}

	if err := ac.authService.ChangePassword(c.GetUint("userID"), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "Failed to change password")
		return
	}
	respond(c, http.StatusOK, "Password updated", nil)
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description Always succeeds so that registered emails cannot be probed
// @Tags auth
// @Accept json
// @Produce json
// @Param request body forgotPasswordRequest true "Email address"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Router /api/auth/forgot-password [post]
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email is required", err)
		return
	}

	if err := ac.authService.ForgotPassword(req.Email); err != nil && !errors.Is(err, services.ErrNotFound) {
		respondError(c, err, "Failed to start password reset")
		return
	}
	respond(c, http.StatusOK, "If the email is registered, a reset link has been sent", nil)
}

// ResetPassword godoc
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body resetPasswordRequest true "New password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Router /api/auth/reset-password/{token} [post]
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Password is required", err)
		return
	}

	if err := ac.authService.ResetPassword(c.Param("token"), req.Password); err != nil {
		respondError(c, err, "Failed to reset password")
		return
	}
	respond(c, http.StatusOK, "Password has been reset", nil)
}

// VerifyEmail godoc
// @Summary Confirm an email address
// @Description Marks the account verified and redirects to the frontend login page
// @Tags auth
// @Param token path string true "Verification token"
// @Success 302
// @Failure 400 {object} models.APIError
// @Router /api/auth/verify-email/{token} [get]
func (ac *AuthController) VerifyEmail(c *gin.Context) {
	target, err := ac.authService.VerifyEmail(c.Param("token"))
	if err != nil {
		respondError(c, err, "Failed to verify email")
		return
	}
	c.Redirect(http.StatusFound, target)
}
