package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeInvalidPrice         = "INVALID_PRICE"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeOrderNumberExhausted = "ORDER_NUMBER_EXHAUSTED"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped copies with a
// more specific message still match the sentinel.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidJSON          = NewDomainError(ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrQuantityTooLarge     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must not exceed 9999")
	ErrInvalidPrice         = NewDomainError(ErrCodeInvalidPrice, "Price must not be negative")
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrInvalidStatus        = NewDomainError(ErrCodeInvalidStatus, "Status must be one of pending, confirmed, shipped, delivered, cancelled")
	ErrInvalidTransition    = NewDomainError(ErrCodeInvalidTransition, "Order status can only move forward")
	ErrInsufficientStock    = NewDomainError(ErrCodeInsufficientStock, "Not enough stock for one or more products")
	ErrOrderNumberExhausted = NewDomainError(ErrCodeOrderNumberExhausted, "Could not allocate a unique order number")
	ErrUnauthorised         = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden            = NewDomainError(ErrCodeForbidden, "Not authorised to perform this action")
)

// MissingField reports a required request field that was empty.
func MissingField(field string) *DomainError {
	return NewDomainError(ErrCodeMissingField, field+" is required")
}
