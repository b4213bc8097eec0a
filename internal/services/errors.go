package services

import "errors"

// Sentinel errors returned by the services. Controllers map them to HTTP
// status codes; wrap them with fmt.Errorf("...: %w") to add context.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("conflict")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStaleVersion      = errors.New("stale version")
	ErrOTPNotFound       = errors.New("otp not found or expired")
	ErrOTPMismatch       = errors.New("invalid otp")
	ErrDelivery          = errors.New("notification delivery failed")
	ErrGateway           = errors.New("payment gateway error")
	ErrInvalidSignature  = errors.New("invalid payment signature")
)
