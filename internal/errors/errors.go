package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Folio error code.
type ErrorCode string

const (
	ErrInvalidRequest       ErrorCode = "INVALID_REQUEST"        // 400
	ErrNotFound             ErrorCode = "NOT_FOUND"              // 404
	ErrDuplicateSlug        ErrorCode = "DUPLICATE_SLUG"         // 409
	ErrInvalidSlug          ErrorCode = "INVALID_SLUG"           // 422
	ErrUnresolvedReference  ErrorCode = "UNRESOLVED_REFERENCE"   // 422
	ErrMalformedFrontMatter ErrorCode = "MALFORMED_FRONT_MATTER" // 422
	ErrCancelled            ErrorCode = "CANCELLED"              // 499
	ErrInternal             ErrorCode = "INTERNAL"               // 500
)

// FolioError represents a structured error with code, status, and details.
type FolioError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *FolioError {
	return &FolioError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a slug that is not in the corpus.
func NewNotFound(slug string) *FolioError {
	return &FolioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("article not found: %s", slug),
		Details: map[string]any{"slug": slug},
	}
}

// NewDuplicateSlug creates a 409 error when two files map to the same slug.
func NewDuplicateSlug(slug, path, existingPath string) *FolioError {
	return &FolioError{
		Code:    ErrDuplicateSlug,
		Status:  409,
		Message: fmt.Sprintf("slug %q from %s already used by %s", slug, path, existingPath),
		Details: map[string]any{"slug": slug, "path": path, "existing_path": existingPath},
	}
}

// NewInvalidSlug creates a 422 error for a file name that yields no usable slug.
func NewInvalidSlug(path, reason string) *FolioError {
	return &FolioError{
		Code:    ErrInvalidSlug,
		Status:  422,
		Message: fmt.Sprintf("%s: %s", path, reason),
		Details: map[string]any{"path": path, "reason": reason},
	}
}

// NewUnresolvedReference creates a 422 error for a cross-article link with no target.
func NewUnresolvedReference(from, target string) *FolioError {
	return &FolioError{
		Code:    ErrUnresolvedReference,
		Status:  422,
		Message: fmt.Sprintf("reference %q in %s does not match any article", target, from),
		Details: map[string]any{"from": from, "target": target},
	}
}

// NewMalformedFrontMatter creates a 422 error for an article whose metadata cannot be used.
func NewMalformedFrontMatter(path, reason string) *FolioError {
	return &FolioError{
		Code:    ErrMalformedFrontMatter,
		Status:  422,
		Message: fmt.Sprintf("%s: %s", path, reason),
		Details: map[string]any{"path": path, "reason": reason},
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(operation string) *FolioError {
	return &FolioError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *FolioError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &FolioError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// As returns the FolioError in err's chain, if any.
func As(err error) (*FolioError, bool) {
	var fErr *FolioError
	if stderrors.As(err, &fErr) {
		return fErr, true
	}
	return nil, false
}

// Is checks if an error is a FolioError with the given code.
func Is(err error, code ErrorCode) bool {
	if fErr, ok := As(err); ok {
		return fErr.Code == code
	}
	return false
}
