// Package errors provides structured error handling for the application.
// Every failure that crosses the HTTP boundary is an AppError carrying a code
// that maps onto a status and a message that is safe to show to the end user.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Extraction errors, surfaced as 422
	CodeFetchFailed      ErrorCode = "FETCH_FAILED"
	CodeNoContent        ErrorCode = "NO_CONTENT"
	CodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	CodeNoRecipe         ErrorCode = "NO_RECIPE"

	// Server errors (5xx)
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError    ErrorCode = "DATABASE_ERROR"
	CodeConfiguration    ErrorCode = "CONFIGURATION_ERROR"
	CodeModelUnavailable ErrorCode = "MODEL_UNAVAILABLE"
	CodeSchemaInvalid    ErrorCode = "SCHEMA_INVALID"

	// Business logic errors
	CodeRecipeNotFound          ErrorCode = "RECIPE_NOT_FOUND"
	CodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
)

// ManualEntryHint is appended to extraction failures shown to the user.
const ManualEntryHint = "Try pasting the recipe text directly instead."

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeInsufficientPermissions:
		return http.StatusForbidden
	case CodeNotFound, CodeRecipeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeFetchFailed, CodeNoContent, CodeExtractionFailed, CodeNoRecipe:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return NewAppError(CodeUnauthorized, message, "")
}

// NewTooManyRequestsError creates a rate limit error
func NewTooManyRequestsError() *AppError {
	return NewAppError(CodeTooManyRequests, "Too many requests. Please slow down.", "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewConfigurationError reports a server-side misconfiguration such as a missing credential.
func NewConfigurationError(details string) *AppError {
	return NewAppError(CodeConfiguration, "Server configuration error", details)
}

// NewFetchError reports a page that could not be retrieved. status is 0 for
// network and timeout failures.
func NewFetchError(url string, status int, cause error) *AppError {
	message := "Failed to access URL"
	if status > 0 {
		message = fmt.Sprintf("Failed to access URL (%d)", status)
	}
	return NewAppError(CodeFetchFailed, message, ManualEntryHint).
		WithMetadata("url", url).
		WithMetadata("status", status).
		WithCause(cause)
}

// NewNoContentError reports a page whose extracted text is too short to be a recipe.
func NewNoContentError(url string, length int) *AppError {
	return NewAppError(
		CodeNoContent,
		"Could not extract meaningful content from the URL",
		ManualEntryHint,
	).WithMetadata("url", url).WithMetadata("length", length)
}

// NewExtractionError reports a recognised source that yielded nothing usable.
func NewExtractionError(message string, cause error) *AppError {
	return NewAppError(CodeExtractionFailed, message, ManualEntryHint).WithCause(cause)
}

// NewNoRecipeError carries the model's explanation of why the content holds no recipe.
func NewNoRecipeError(reason string) *AppError {
	return NewAppError(CodeNoRecipe, "No recipe found in the provided content", reason)
}

// NewModelError wraps the last candidate failure. The message never leaks the cause.
func NewModelError(cause error) *AppError {
	return NewAppError(
		CodeModelUnavailable,
		"Failed to parse recipe. Please try again.",
		"",
	).WithCause(cause)
}

// NewSchemaError reports a model reply that is not the expected JSON shape.
func NewSchemaError(cause error) *AppError {
	return NewAppError(
		CodeSchemaInvalid,
		"Failed to parse recipe. Please try again or enter recipe manually.",
		"",
	).WithCause(cause)
}

// NewRecipeNotFoundError creates a recipe not found error
func NewRecipeNotFoundError(recipeID string) *AppError {
	return NewAppError(
		CodeRecipeNotFound,
		"Recipe not found",
		fmt.Sprintf("Recipe with ID %s does not exist", recipeID),
	).WithMetadata("recipe_id", recipeID)
}

// NewInsufficientPermissionsError creates an insufficient permissions error
func NewInsufficientPermissionsError(action string) *AppError {
	return NewAppError(
		CodeInsufficientPermissions,
		"Insufficient permissions",
		fmt.Sprintf("You don't have permission to %s", action),
	).WithMetadata("action", action)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error chain carries an AppError with the given code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// UserMessage returns the text shown to API clients. Extraction failures carry
// their hint; server failures only ever expose the generic message.
func (e *AppError) UserMessage() string {
	switch e.Code {
	case CodeFetchFailed, CodeNoContent, CodeExtractionFailed, CodeNoRecipe:
		if e.Details != "" {
			return e.Message + ". " + e.Details
		}
	}
	return e.Message
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// ErrorResponse is the body written for every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError) ErrorResponse {
	return ErrorResponse{Error: err.UserMessage()}
}
