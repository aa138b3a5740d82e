// Package errors defines structured error types for the API.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode defines specific error types for the API.
type ErrorCode string

const (
	// ErrValidationFailed is returned when input data fails validation
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrMissingField is returned when a required field is missing
	ErrMissingField ErrorCode = "MISSING_FIELD"

	// ErrNotFound is returned when a resource is not found
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrCollectionNotFound is returned when a collection is not found or
	// belongs to another user. The two cases deliberately share one code so
	// the existence of a foreign collection is never disclosed.
	ErrCollectionNotFound ErrorCode = "COLLECTION_NOT_FOUND"
	// ErrItemNotFound is returned when an item is not found inside a collection
	ErrItemNotFound ErrorCode = "ITEM_NOT_FOUND"

	// ErrEmailTaken is returned when registering with an email that is already in use
	ErrEmailTaken ErrorCode = "EMAIL_TAKEN"
	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password; the two cases are indistinguishable to the caller
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrUnauthorized is returned when authentication is missing or invalid
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"

	// ErrStorageError is returned when a storage operation fails
	ErrStorageError ErrorCode = "STORAGE_ERROR"
	// ErrInternal is returned when an unexpected server error occurs
	ErrInternal ErrorCode = "INTERNAL"
)

// ErrorWithStatus is an error that includes an HTTP status code and error code.
type ErrorWithStatus interface {
	Error() string
	StatusCode() int
	Code() ErrorCode
}

// APIError is a concrete error type with status code, code, and an optional wrapped cause.
type APIError struct {
	statusCode int
	code       ErrorCode
	message    string
	wrappedErr error
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, code ErrorCode, message string) *APIError {
	return &APIError{
		statusCode: statusCode,
		code:       code,
		message:    message,
	}
}

// Wrap wraps an underlying error.
func (e *APIError) Wrap(err error) *APIError {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// StatusCode returns the HTTP status code.
func (e *APIError) StatusCode() int {
	return e.statusCode
}

// Code returns the error code.
func (e *APIError) Code() ErrorCode {
	return e.code
}

// Unwrap returns the wrapped error if any.
func (e *APIError) Unwrap() error {
	return e.wrappedErr
}

// Predefined error constructors for common cases

// NotFound creates a 404 Not Found error.
func NotFound(resource string) *APIError {
	return NewAPIError(http.StatusNotFound, ErrNotFound, fmt.Sprintf("%s not found", resource))
}

// CollectionNotFound creates the merged not-found/unauthorized error for
// owner-scoped collection lookups.
func CollectionNotFound() *APIError {
	return NewAPIError(http.StatusNotFound, ErrCollectionNotFound, "Collection not found or unauthorized")
}

// CollectionMissing creates a 404 for public lookups where no ownership is involved.
func CollectionMissing() *APIError {
	return NewAPIError(http.StatusNotFound, ErrCollectionNotFound, "Collection not found")
}

// ItemNotFound creates a 404 for a missing item inside an existing collection.
func ItemNotFound() *APIError {
	return NewAPIError(http.StatusNotFound, ErrItemNotFound, "Item not found")
}

// EmailTaken creates a 409 Conflict error for duplicate registrations.
func EmailTaken() *APIError {
	return NewAPIError(http.StatusConflict, ErrEmailTaken, "User already exists")
}

// InvalidCredentials creates a 401 for failed logins.
func InvalidCredentials() *APIError {
	return NewAPIError(http.StatusUnauthorized, ErrInvalidCredentials, "Invalid credentials")
}

// Unauthorized returns a 401 Unauthorized error.
func Unauthorized() *APIError {
	return NewAPIError(http.StatusUnauthorized, ErrUnauthorized, "Unauthorized")
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrValidationFailed, message)
}

// MissingField creates a 400 Bad Request error for a missing field.
func MissingField(fieldName string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrMissingField, fmt.Sprintf("Missing required field: %s", fieldName))
}

// Storage creates a 500 error for a failed storage operation.
func Storage(err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, ErrStorageError, "Storage unavailable").Wrap(err)
}

// Internal returns a 500 Internal Server Error.
func Internal(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, ErrInternal, message)
}

// InternalWithError creates a 500 error wrapping an underlying error.
func InternalWithError(message string, err error) *APIError {
	return Internal(message).Wrap(err)
}
