// Package errors provides application-level error types and utilities.
// Every rejection the workflow reports to a member carries an ErrorType and,
// for precondition and lookup failures, a machine-readable Reason.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "validation_error"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeConflict           ErrorType = "conflict"
	ErrorTypePreconditionFailed ErrorType = "precondition_failed"
	ErrorTypeUnavailable        ErrorType = "unavailable"
	ErrorTypeUnauthorized       ErrorType = "unauthorized"
	ErrorTypeForbidden          ErrorType = "forbidden"
	ErrorTypeInternal           ErrorType = "internal_error"
	ErrorTypeBadRequest         ErrorType = "bad_request"
)

// Reason identifies which guard rejected an operation.
type Reason string

const (
	ReasonNotStaff                Reason = "not_staff"
	ReasonNotOwner                Reason = "not_owner"
	ReasonAlreadyClaimed          Reason = "already_claimed"
	ReasonLimitReached            Reason = "limit_reached"
	ReasonCooldownActive          Reason = "cooldown_active"
	ReasonTicketClosed            Reason = "ticket_closed"
	ReasonPlanRequired            Reason = "plan_required"
	ReasonMethodRequired          Reason = "method_required"
	ReasonPaymentNotClaimed       Reason = "payment_not_claimed"
	ReasonPaymentNotConfirmed     Reason = "payment_not_confirmed"
	ReasonPaymentAlreadyConfirmed Reason = "payment_already_confirmed"
	ReasonSubscriptionNotActive   Reason = "subscription_not_active"
	ReasonReminderAlreadySent     Reason = "reminder_already_sent"
	ReasonPanelDisabled           Reason = "panel_disabled"
	ReasonOptionUnavailable       Reason = "option_unavailable"
	ReasonRateLimited             Reason = "rate_limited"

	ReasonTicketNotFound       Reason = "ticket_not_found"
	ReasonPanelNotFound        Reason = "panel_not_found"
	ReasonPlanNotFound         Reason = "plan_not_found"
	ReasonMethodNotFound       Reason = "method_not_found"
	ReasonSubscriptionNotFound Reason = "subscription_not_found"
	ReasonReminderNotFound     Reason = "reminder_not_found"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Reason  Reason    `json:"reason,omitempty"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewNotFoundErrorWithReason creates a not found error tagged with the missing entity.
func NewNotFoundErrorWithReason(reason Reason, message string, details ...string) *AppError {
	e := newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
	e.Reason = reason
	return e
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewPreconditionError creates an error for an operation whose guard did not hold.
func NewPreconditionError(reason Reason, message string, details ...string) *AppError {
	e := newAppError(ErrorTypePreconditionFailed, http.StatusPreconditionFailed, message, details)
	e.Reason = reason
	return e
}

// NewUnavailableError creates an error for a failed call to an external collaborator.
func NewUnavailableError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable, message, details)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// ReasonOf returns the Reason attached to err, or an empty Reason.
func ReasonOf(err error) Reason {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Reason
	}
	return ""
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeConflict
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeValidation
}

// IsPreconditionError checks if the error is a precondition failure
func IsPreconditionError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypePreconditionFailed
}

// IsUnavailableError checks if the error is an external-collaborator failure
func IsUnavailableError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeUnavailable
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry error
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// SQLite unique violation
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	return false
}
