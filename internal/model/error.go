package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeEmptyOrder       = "EMPTY_ORDER"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodePriceMismatch    = "PRICE_MISMATCH"
	ErrCodeAlreadyPaid      = "ALREADY_PAID"
	ErrCodeAlreadyDelivered = "ALREADY_DELIVERED"
	ErrCodeAlreadyReviewed  = "ALREADY_REVIEWED"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError is a business-logic error carrying a stable code that
// handlers map to an HTTP status.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
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
	ErrEmptyOrder       = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrInvalidQuantity  = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrPriceMismatch    = NewDomainError(ErrCodePriceMismatch, "Submitted total does not match current catalogue prices")
	ErrAlreadyPaid      = NewDomainError(ErrCodeAlreadyPaid, "Order has already been paid")
	ErrAlreadyDelivered = NewDomainError(ErrCodeAlreadyDelivered, "Order has already been delivered")
	ErrAlreadyReviewed  = NewDomainError(ErrCodeAlreadyReviewed, "Product already reviewed")
	ErrProductNotFound  = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound    = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound     = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrUnauthorised     = NewDomainError(ErrCodeUnauthorised, "Not authorised")
	ErrForbidden        = NewDomainError(ErrCodeForbidden, "Not permitted to access this resource")
)
