package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
	From     string `json:"from,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeProfileIncomplete    = "PROFILE_INCOMPLETE"
	ErrCodeNoOpenCart           = "NO_OPEN_CART"
	ErrCodeCartLineNotFound     = "CART_LINE_NOT_FOUND"
	ErrCodePhoneNotFound        = "PHONE_NOT_FOUND"
	ErrCodeSupplierNotFound     = "SUPPLIER_NOT_FOUND"
	ErrCodeOrderNotFound        = "PURCHASE_ORDER_NOT_FOUND"
	ErrCodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeCheckoutInProgress   = "CHECKOUT_IN_PROGRESS"
	ErrCodePartialCheckout      = "PARTIAL_CHECKOUT_FAILURE"
	ErrCodeRemoteCallFailure    = "REMOTE_CALL_FAILURE"
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

// Is reports whether target carries the same code, so validation errors built
// with NewValidationError still match ErrValidation.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying a specific message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// Common domain errors
var (
	ErrValidation           = NewDomainError(ErrCodeValidation, "Invalid input")
	ErrProfileIncomplete    = NewDomainError(ErrCodeProfileIncomplete, "Complete your customer profile before using the cart")
	ErrNoOpenCart           = NewDomainError(ErrCodeNoOpenCart, "There is no open cart")
	ErrCartEmpty            = NewValidationError("cart is empty")
	ErrCartLineNotFound     = NewDomainError(ErrCodeCartLineNotFound, "Cart line not found")
	ErrPhoneNotFound        = NewDomainError(ErrCodePhoneNotFound, "Phone not found")
	ErrSupplierNotFound     = NewDomainError(ErrCodeSupplierNotFound, "Supplier not found")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Purchase order not found")
	ErrConfirmationRequired = NewDomainError(ErrCodeConfirmationRequired, "Quantity zero removes the line; confirm the removal explicitly")
	ErrInvalidTransition    = NewDomainError(ErrCodeInvalidTransition, "Purchase order can no longer change state")
	ErrCheckoutInProgress   = NewDomainError(ErrCodeCheckoutInProgress, "A checkout for this cart is already running")
	ErrRemoteCallFailure    = NewDomainError(ErrCodeRemoteCallFailure, "The storefront backend did not answer correctly")
)

// PartialCheckoutError reports a checkout that stopped after some of its
// steps had already been applied.
type PartialCheckoutError struct {
	SagaID      string
	FailedStep  string
	Compensated bool
	Err         error
}

func (e *PartialCheckoutError) Error() string {
	if e.Compensated {
		return "checkout failed at step " + e.FailedStep + " and was rolled back: " + e.Err.Error()
	}
	return "checkout failed at step " + e.FailedStep + " and left partial changes: " + e.Err.Error()
}

func (e *PartialCheckoutError) Unwrap() error {
	return e.Err
}

// Code returns the error code used in API responses.
func (e *PartialCheckoutError) Code() string {
	return ErrCodePartialCheckout
}

// RemoteFailure is implemented by transport errors coming from the
// storefront backend.
type RemoteFailure interface {
	error
	StatusCode() int
}

// IsRemoteFailure reports whether err originates from a failed backend call.
func IsRemoteFailure(err error) bool {
	var rf RemoteFailure
	return errors.As(err, &rf) || errors.Is(err, ErrRemoteCallFailure)
}
