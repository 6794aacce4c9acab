package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a deckhand error code.
type ErrorCode string

const (
	ErrAmbiguousAddressing ErrorCode = "AMBIGUOUS_ADDRESSING" // 400
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrInvalidBudget       ErrorCode = "INVALID_BUDGET"       // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrFileNotFound        ErrorCode = "FILE_NOT_FOUND"       // 404
	ErrNameAlreadyExists   ErrorCode = "NAME_ALREADY_EXISTS"  // 409
	ErrSourceTooLarge      ErrorCode = "SOURCE_TOO_LARGE"     // 413
	ErrUnsupportedSource   ErrorCode = "UNSUPPORTED_SOURCE"   // 415
	ErrCancelled           ErrorCode = "CANCELLED"            // 499
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// DeckError represents a structured error with code, status, and details.
type DeckError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *DeckError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAmbiguousAddressing creates a 400 error for when both ID and name are provided.
func NewAmbiguousAddressing() *DeckError {
	return &DeckError{
		Code:    ErrAmbiguousAddressing,
		Status:  400,
		Message: "cannot specify both id and name; use one addressing mode",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *DeckError {
	return &DeckError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidBudget creates a 400 error for a non-positive slide budget.
func NewInvalidBudget(field string, value int) *DeckError {
	return &DeckError{
		Code:    ErrInvalidBudget,
		Status:  400,
		Message: fmt.Sprintf("%s must be positive, got %d", field, value),
		Details: map[string]any{"field": field, "value": value},
	}
}

// NewNotFound creates a 404 error for when a deck cannot be found.
func NewNotFound(identifier string) *DeckError {
	return &DeckError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("deck not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing source file.
func NewFileNotFound(path string) *DeckError {
	return &DeckError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNameAlreadyExists creates a 409 error for name collisions.
func NewNameAlreadyExists(workspace, name string) *DeckError {
	return &DeckError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("deck with name %q already exists in workspace %q", name, workspace),
		Details: map[string]any{"workspace": workspace, "name": name},
	}
}

// NewSourceTooLarge creates a 413 error when a source document exceeds the size limit.
func NewSourceTooLarge(max, actual int) *DeckError {
	return &DeckError{
		Code:    ErrSourceTooLarge,
		Status:  413,
		Message: fmt.Sprintf("source exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewUnsupportedSource creates a 415 error for source documents that cannot be converted.
func NewUnsupportedSource(mimeType string) *DeckError {
	return &DeckError{
		Code:    ErrUnsupportedSource,
		Status:  415,
		Message: fmt.Sprintf("unsupported source type: %s", mimeType),
		Details: map[string]any{"mime_type": mimeType},
	}
}

// NewCancelled creates a 499 error when an operation is cancelled via context.
func NewCancelled(operation string) *DeckError {
	return &DeckError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *DeckError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &DeckError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err (or anything it wraps) is a DeckError with the given code.
func Is(err error, code ErrorCode) bool {
	var dErr *DeckError
	if stderrors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
