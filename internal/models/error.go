package models

// APIError is the failure shape of the response envelope
type APIError struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// Error carries the internal cause and is left empty in production
	Error string `json:"error,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Domain errors
	ErrSessionExpired     = "SESSION_EXPIRED"
	ErrInvalidToken       = "INVALID_TOKEN"
	ErrOTPInvalid         = "OTP_INVALID"
	ErrOTPNotFound        = "OTP_NOT_FOUND"
	ErrInvalidTransition  = "INVALID_STATUS_TRANSITION"
	ErrStaleVersion       = "STALE_VERSION"
	ErrPaymentGateway     = "PAYMENT_GATEWAY_ERROR"
	ErrPaymentSignature   = "PAYMENT_SIGNATURE_INVALID"
	ErrNotificationFailed = "NOTIFICATION_FAILED"

	// OAuth/Auth errors (maintain RFC 6749 compatibility)
	ErrInvalidRequest       = "invalid_request"
	ErrInvalidClient        = "invalid_client"
	ErrUnsupportedGrantType = "unsupported_grant_type"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string) APIError {
	return APIError{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// OAuth2Error represents an OAuth2 error response (RFC 6749)
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// NewOAuth2Error creates a new OAuth2 error response
func NewOAuth2Error(error, description string) OAuth2Error {
	return OAuth2Error{
		Error:            error,
		ErrorDescription: description,
	}
}
