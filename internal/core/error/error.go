package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// RetrievalErrorMessage describes embedding or similarity-search failures.
	RetrievalErrorMessage = "retrieval operation failed"
	// ToolErrorMessage describes a tool handler failure.
	ToolErrorMessage = "tool execution failed"
	// CompletionErrorMessage describes a completion-service failure.
	CompletionErrorMessage = "completion request failed"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapRetrieval wraps an embedding/search error with a consistent status and message.
func WrapRetrieval(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, RetrievalErrorMessage)
}

// WrapTool wraps a tool handler error with a consistent status and message.
func WrapTool(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInternalServerError, ToolErrorMessage)
}

// WrapCompletion wraps a completion-service error with a consistent status and message.
func WrapCompletion(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, CompletionErrorMessage)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
