package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorKind classifies a domain error so the transport layer can map it
// to a response without inspecting messages.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindConflict
	KindNotFound
	KindUnexpected
)

// Standard error codes for API responses
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidPhone       = "INVALID_PHONE"
	ErrCodePastBooking        = "PAST_BOOKING"
	ErrCodeSlotTaken          = "SLOT_TAKEN"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeSameStatus         = "SAME_STATUS"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeAppointmentMissing = "APPOINTMENT_NOT_FOUND"
	ErrCodeOrderMissing       = "ORDER_NOT_FOUND"
	ErrCodeUserMissing        = "USER_NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError carries a kind, a stable code and a human-readable message.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError creates a validation-kind domain error.
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewConflictError creates a conflict-kind domain error.
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// NewNotFoundError creates a not-found-kind domain error.
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// KindOf reports the kind of err. Anything that is not a DomainError is
// treated as unexpected.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// Common domain errors
var (
	ErrInvalidPhone        = NewValidationError(ErrCodeInvalidPhone, "phone number must be 11 digits starting with 03")
	ErrPastBooking         = NewValidationError(ErrCodePastBooking, "cannot book in the past")
	ErrSlotTaken           = NewConflictError(ErrCodeSlotTaken, "slot already reserved")
	ErrSameStatus          = NewConflictError(ErrCodeSameStatus, "order already has the requested status")
	ErrAppointmentNotFound = NewNotFoundError(ErrCodeAppointmentMissing, "appointment not found")
	ErrOrderNotFound       = NewNotFoundError(ErrCodeOrderMissing, "order not found")
	ErrUserNotFound        = NewNotFoundError(ErrCodeUserMissing, "user not found")
)

// NewProductNotFound reports an unknown product id in an order request.
func NewProductNotFound(productID int64) *DomainError {
	return NewNotFoundError(ErrCodeProductNotFound, fmt.Sprintf("product %d not found", productID))
}

// NewInsufficientStock reports a reservation exceeding available stock.
func NewInsufficientStock(name string, remaining int) *DomainError {
	return NewConflictError(ErrCodeInsufficientStock,
		fmt.Sprintf("insufficient inventory for %q: %d remaining", name, remaining))
}

// NewInvalidTransition reports a status change the state machine forbids.
func NewInvalidTransition(from, to string) *DomainError {
	return NewConflictError(ErrCodeInvalidTransition,
		fmt.Sprintf("cannot transition from %s to %s", from, to))
}
